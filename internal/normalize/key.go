package normalize

import "strings"

// Canonical 返回编号的规范形式：取第一个 "." 左侧部分并去除首尾空白。
// 用于消除表格数值化带来的 "123.0"。Canonical 是幂等的。
func Canonical(raw string) string {
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// IsDegenerate 报告规范化后的编号是否视为"无编号"：空串或 nan
func IsDegenerate(key string) bool {
	return key == "" || strings.EqualFold(key, "nan")
}

// KeysMatch 两个编号规范化后相等且都不是无效编号
func KeysMatch(a, b string) bool {
	ca, cb := Canonical(a), Canonical(b)
	if IsDegenerate(ca) || IsDegenerate(cb) {
		return false
	}
	return ca == cb
}

// Contact 去除联系电话因数值化产生的尾部 ".0"
func Contact(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ".0")
}
