package snippets

import (
	"strings"
	"time"
)

type CodeType string

const (
	CodeTypePHP CodeType = "php"
	CodeTypeJS  CodeType = "js"
	CodeTypeCSS CodeType = "css"
)

type Location string

const (
	LocationHead       Location = "head"
	LocationFooter     Location = "footer"
	LocationEverywhere Location = "everywhere"
	LocationCustom     Location = "custom"
)

const DefaultPriority = 10

// ParseCodeType never fails: anything unknown becomes php.
func ParseCodeType(raw string) CodeType {
	switch CodeType(strings.ToLower(strings.TrimSpace(raw))) {
	case CodeTypeJS:
		return CodeTypeJS
	case CodeTypeCSS:
		return CodeTypeCSS
	default:
		return CodeTypePHP
	}
}

// ParseLocation never fails: anything unknown becomes head.
// The wp_head and wp_footer spellings are accepted for imported snippets.
func ParseLocation(raw string) Location {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "footer", "wp_footer":
		return LocationFooter
	case "everywhere":
		return LocationEverywhere
	case "custom":
		return LocationCustom
	default:
		return LocationHead
	}
}

func (c CodeType) Valid() bool {
	return c == CodeTypePHP || c == CodeTypeJS || c == CodeTypeCSS
}

func (l Location) Valid() bool {
	switch l {
	case LocationHead, LocationFooter, LocationEverywhere, LocationCustom:
		return true
	}
	return false
}

type Snippet struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	CodeType   CodeType `json:"code_type"`
	Location   Location `json:"location"`
	CustomHook string   `json:"custom_hook"`
	Priority   int      `json:"priority"`
	Active     bool     `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateSnippetRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	CodeType   string `json:"code_type"`
	Location   string `json:"location"`
	CustomHook string `json:"custom_hook"`
	Priority   *int   `json:"priority"`
	Active     bool   `json:"active"`
}

// SnippetFilter narrows List. Zero values mean "any".
type SnippetFilter struct {
	Active   *bool
	Location Location
	CodeType CodeType
}

func (f SnippetFilter) Match(s *Snippet) bool {
	if f.Active != nil && s.Active != *f.Active {
		return false
	}
	if f.Location != "" && s.Location != f.Location {
		return false
	}
	if f.CodeType != "" && s.CodeType != f.CodeType {
		return false
	}
	return true
}

func ActiveOnly() *bool {
	v := true
	return &v
}
