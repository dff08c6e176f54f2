package model

// CompanyProfile is the classifier's view of the target company.
type CompanyProfile struct {
	CompanyName      string   `json:"company_name"`
	Industry         string   `json:"industry"`
	Description      string   `json:"description"`
	ProductsServices []string `json:"products_services"`
	TargetMarket     string   `json:"target_market"`
}

// CompetitorCandidate is a brand the scorer judged to compete with the target.
type CompetitorCandidate struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Website         *string `json:"website"`
	Description     *string `json:"description"`
	SimilarityScore int     `json:"similarityScore"`
}

// Report is the full output of one pipeline run.
type Report struct {
	WebsiteURL       string                `json:"website_url"`
	Company          CompanyProfile        `json:"company"`
	Competitors      []CompetitorCandidate `json:"competitors"`
	TotalAnalyzed    int                   `json:"totalAnalyzed"`
	TotalCompetitors int                   `json:"totalCompetitors"`
	Analytics        *Analytics            `json:"analytics,omitempty"`
	Steps            []StepResult          `json:"steps"`
}

// StepStatus is the outcome of one pipeline step.
type StepStatus string

const (
	StepComplete StepStatus = "complete"
	StepFailed   StepStatus = "failed"
	StepSkipped  StepStatus = "skipped"
)

// StepResult records the outcome and duration of one pipeline step.
type StepResult struct {
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	DurationMs int64      `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
}
