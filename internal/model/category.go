package model

import "strings"

// Category is the sales-priority label of a lead. It runs inverse to SEO
// quality: HOT means the worst SEO and the best sales opportunity.
type Category string

const (
	CategoryCold Category = "COLD (Good SEO)"
	CategoryWarm Category = "WARM"
	CategoryHot  Category = "HOT (Poor SEO)"
)

// Score thresholds, inclusive on the low edge of each band.
const (
	ColdThreshold = 70
	WarmThreshold = 50
)

// Classify maps an SEO score to its Category.
func Classify(score int) Category {
	switch {
	case score >= ColdThreshold:
		return CategoryCold
	case score >= WarmThreshold:
		return CategoryWarm
	default:
		return CategoryHot
	}
}

// Is reports whether the label contains tag (e.g. "HOT").
func (c Category) Is(tag string) bool {
	return strings.Contains(string(c), tag)
}
