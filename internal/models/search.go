package models

import (
	"fmt"
	"strings"
)

// SearchCriteria define uma busca monitorada
type SearchCriteria struct {
	Keywords   []string `yaml:"keywords"`
	MinPrice   *int     `yaml:"min_price"`
	MaxPrice   *int     `yaml:"max_price"`
	Radius     int      `yaml:"radius"`
	CategoryID *int     `yaml:"category_id"`
	LocationID *int     `yaml:"location_id"`
	Page       int      `yaml:"page"`
}

// Query retorna as palavras-chave como um único termo de busca
func (c SearchCriteria) Query() string {
	return strings.Join(c.Keywords, " ")
}

// String descreve a busca de forma legível (usado em logs e no bot)
func (c SearchCriteria) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", c.Query())
	if c.MinPrice != nil || c.MaxPrice != nil {
		b.WriteString(" Preis ")
		b.WriteString(formatBound(c.MinPrice))
		b.WriteString("-")
		b.WriteString(formatBound(c.MaxPrice))
	}
	if c.CategoryID != nil {
		fmt.Fprintf(&b, " Kategorie %d", *c.CategoryID)
	}
	if c.LocationID != nil {
		fmt.Fprintf(&b, " Ort %d", *c.LocationID)
	}
	return b.String()
}

func formatBound(v *int) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%d", *v)
}
