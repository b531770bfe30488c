package models

// SummaryBucket is one day of a per-date count series.
type SummaryBucket struct {
	Date  string `json:"日付"`
	Count int    `json:"小計"`
}

// InspectionSeries holds the two parallel inspection series.
type InspectionSeries struct {
	Inspections []int `json:"検査件数(件)"`
	Positives   []int `json:"陽性者数(人)"`
}

// Section is the {date, data} envelope used by every data.json section.
type Section[T any] struct {
	Date string `json:"date"`
	Data T      `json:"data"`
}

// LabeledSection is a Section that also carries chart labels.
type LabeledSection[T any] struct {
	Date   string   `json:"date"`
	Data   T        `json:"data"`
	Labels []string `json:"labels"`
}

// Empty marshals as {}.
type Empty struct{}

// DataFeed is the data.json document. Field order is the output key order.
type DataFeed struct {
	Patients              Section[[]PatientRecord]         `json:"patients"`
	PatientsSummary       Section[[]SummaryBucket]         `json:"patients_summary"`
	Contacts              Section[[]SummaryBucket]         `json:"contacts"`
	Querents              Section[[]SummaryBucket]         `json:"querents"`
	DischargesSummary     Section[[]SummaryBucket]         `json:"discharges_summary"`
	Inspections           Section[[]InspectionRecord]      `json:"inspections"`
	InspectionsSummary    LabeledSection[InspectionSeries] `json:"inspections_summary"`
	BetterPatientsSummary Section[Empty]                   `json:"better_patients_summary"`
	LastUpdate            string                           `json:"lastUpdate"`
	MainSummary           Empty                            `json:"main_summary"`
}

// NewDataFeed returns a feed with every section stamped with updated and with
// non-nil empty data, so that absent sources serialize as [] rather than null.
func NewDataFeed(updated string) *DataFeed {
	return &DataFeed{
		Patients:          Section[[]PatientRecord]{Date: updated, Data: []PatientRecord{}},
		PatientsSummary:   Section[[]SummaryBucket]{Date: updated, Data: []SummaryBucket{}},
		Contacts:          Section[[]SummaryBucket]{Date: updated, Data: []SummaryBucket{}},
		Querents:          Section[[]SummaryBucket]{Date: updated, Data: []SummaryBucket{}},
		DischargesSummary: Section[[]SummaryBucket]{Date: updated, Data: []SummaryBucket{}},
		Inspections:       Section[[]InspectionRecord]{Date: updated, Data: []InspectionRecord{}},
		InspectionsSummary: LabeledSection[InspectionSeries]{
			Date:   updated,
			Data:   InspectionSeries{Inspections: []int{}, Positives: []int{}},
			Labels: []string{},
		},
		BetterPatientsSummary: Section[Empty]{Date: updated},
		LastUpdate:            updated,
	}
}
