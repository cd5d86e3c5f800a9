package schema

import "strings"

// QuoteIdent 为标识符加双引号，"end"、"out" 等列名与 SQL 关键字重名
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
