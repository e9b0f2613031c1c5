package activedirectory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Filter is a composable LDAP filter expression.
type Filter interface {
	String() string
}

type rawFilter string

func (f rawFilter) String() string {
	return string(f)
}

type andFilter struct {
	parts []Filter
}

func And(filters ...Filter) Filter {
	return andFilter{parts: filters}
}

func (f andFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(&" + strings.Join(parts, "") + ")"
}

type orFilter struct {
	parts []Filter
}

func Or(filters ...Filter) Filter {
	return orFilter{parts: filters}
}

func (f orFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(|" + strings.Join(parts, "") + ")"
}

type notFilter struct {
	part Filter
}

func Not(f Filter) Filter {
	return notFilter{part: f}
}

func (f notFilter) String() string {
	return "(!" + f.part.String() + ")"
}

func Eq(attr, value string) Filter {
	return rawFilter("(" + attr + "=" + ldap.EscapeFilter(value) + ")")
}

func Present(attr string) Filter {
	return rawFilter("(" + attr + "=*)")
}

// Contains matches values containing the substring. AD string matching is
// case-insensitive for the attributes used here.
func Contains(attr, value string) Filter {
	return rawFilter("(" + attr + "=*" + ldap.EscapeFilter(value) + "*)")
}

// BitSet builds an LDAP_MATCHING_RULE_BIT_AND clause, used to test
// userAccountControl flags server-side.
func BitSet(attr string, mask int64) Filter {
	return rawFilter(fmt.Sprintf("(%s:1.2.840.113556.1.4.803:=%d)", attr, mask))
}
