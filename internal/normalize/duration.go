package normalize

import "math"

// CoerceDuration 提取单元格中第一段连续数字作为分钟数；没有数字时返回 0。
// 兼容 "45 Mins"、"Duration: 45"、空白等写法。
func CoerceDuration(cell string) int {
	start := -1
	for i := 0; i < len(cell); i++ {
		if isDigit(cell[i]) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}

	n := 0
	for i := start; i < len(cell) && isDigit(cell[i]); i++ {
		d := int(cell[i] - '0')
		if n > (math.MaxInt32-d)/10 {
			return math.MaxInt32
		}
		n = n*10 + d
	}
	return n
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
