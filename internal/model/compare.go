package model

// SectionIChange is one changed Section I row between two reports.
// Change keeps the original sign convention: previous minus current.
type SectionIChange struct {
	RowCode   string  `json:"row_code"`
	RowName   string  `json:"row_name"`
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"` // |change| / previous * 100, 2dp
}

// ProductChange is the drill-down detail for a product whose sold value
// differs between the two reports. The default summary only surfaces the
// count; callers that need detail read ProductsChanged directly.
type ProductChange struct {
	Code              string  `json:"product_code"`
	Name              string  `json:"product_name"`
	CurrentSoldValue  float64 `json:"current_sold_value"`
	PreviousSoldValue float64 `json:"previous_sold_value"`
}

// ComparisonResult is the structural diff between two canonical reports.
type ComparisonResult struct {
	SectionIChanges []SectionIChange `json:"section_i_changes"`
	ProductsAdded   []string         `json:"products_added"`   // names, first 5
	ProductsRemoved []string         `json:"products_removed"` // names, first 5
	ProductsChanged []ProductChange  `json:"products_changed,omitempty"`
	ChangedCount    int              `json:"products_changed_count"`
}

// Comparison pairs the diff with the records it was computed from.
type Comparison struct {
	Current    *Record           `json:"current"`
	Previous   *Record           `json:"previous"`
	Comparison *ComparisonResult `json:"comparison"`
}
