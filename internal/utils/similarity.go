package utils

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TokenSortKey 生成与词序无关的比较键
// 非字母数字字符替换为空格，按词排序后用单个空格拼接
func TokenSortKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio 词序无关相似度 (0-100)
func TokenSortRatio(a, b string) int {
	return Ratio(TokenSortKey(a), TokenSortKey(b))
}

// Ratio 基于编辑距离的相似度 (0-100，四舍五入)
// 替换计为一次删除加一次插入，结果 = (总长度 - 距离) / 总长度
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	dist := indelDistance(ra, rb)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// indelDistance 只允许插入/删除的编辑距离 = len(a)+len(b)-2*LCS
func indelDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return len(a) + len(b) - 2*prev[len(b)]
}
