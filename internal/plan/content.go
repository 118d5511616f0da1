package plan

// Content shapes produced by generation, one per section. Field names follow
// the JSON the model is asked to emit.

// Priority ranks an MVP feature.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// Effort is a t-shirt size estimate for a feature.
type Effort string

const (
	EffortS  Effort = "S"
	EffortM  Effort = "M"
	EffortL  Effort = "L"
	EffortXL Effort = "XL"
)

// Feature is one scoped unit of product work.
type Feature struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Priority             Priority `json:"priority"`
	AcceptanceCriteria   []string `json:"acceptanceCriteria"`
	ImplementationPrompt string   `json:"implementationPrompt"`
	EstimatedEffort      Effort   `json:"estimatedEffort"`
	Dependencies         []string `json:"dependencies"`
	Phase                int      `json:"phase"`
}

// ClarifiedIdea is the structured restatement of the raw idea.
type ClarifiedIdea struct {
	Summary          string   `json:"summary"`
	Problem          string   `json:"problem"`
	TargetUsers      string   `json:"targetUsers"`
	ProposedSolution string   `json:"proposedSolution"`
	Assumptions      []string `json:"assumptions"`
	OpenQuestions    []string `json:"openQuestions"`
}

// UserStory is a persona-scoped requirement.
type UserStory struct {
	Persona            string   `json:"persona"`
	Story              string   `json:"story"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
}

// PRDContent is the product requirements document.
type PRDContent struct {
	Overview                  string      `json:"overview"`
	Objectives                []string    `json:"objectives"`
	UserStories               []UserStory `json:"userStories"`
	FunctionalRequirements    []string    `json:"functionalRequirements"`
	NonFunctionalRequirements []string    `json:"nonFunctionalRequirements"`
	OutOfScope                []string    `json:"outOfScope"`
}

// MVPScope splits features into priority tiers.
type MVPScope struct {
	P0Features []Feature `json:"p0Features"`
	P1Features []Feature `json:"p1Features"`
	P2Features []Feature `json:"p2Features"`
	Rationale  string    `json:"rationale"`
}

// AllFeatures returns P0, P1 and P2 features in that order.
func (m MVPScope) AllFeatures() []Feature {
	out := make([]Feature, 0, len(m.P0Features)+len(m.P1Features)+len(m.P2Features))
	out = append(out, m.P0Features...)
	out = append(out, m.P1Features...)
	out = append(out, m.P2Features...)
	return out
}

// Competitor describes one existing alternative.
type Competitor struct {
	Name           string   `json:"name"`
	Website        string   `json:"website"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"targetAudience"`
	KeyFeatures    []string `json:"keyFeatures"`
	Pricing        string   `json:"pricing"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
}

// CompetitorAnalysis is the market landscape section.
type CompetitorAnalysis struct {
	Competitors                  []Competitor `json:"competitors"`
	MarketGaps                   []string     `json:"marketGaps"`
	DifferentiationOpportunities []string     `json:"differentiationOpportunities"`
	CompetitiveAdvantage         string       `json:"competitiveAdvantage"`
}

// ValidationScore is one scored validation category.
type ValidationScore struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"maxScore"`
	Reasoning string  `json:"reasoning"`
}

// Risk is an identified risk with its mitigation.
type Risk struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// MarketDataPoint is one year of projected market data.
type MarketDataPoint struct {
	Year            string  `json:"year"`
	MarketSize      float64 `json:"marketSize"`
	ProjectedGrowth float64 `json:"projectedGrowth"`
}

// CompetitivePosition compares the idea with the market on one dimension.
type CompetitivePosition struct {
	Dimension     string  `json:"dimension"`
	YourIdea      float64 `json:"yourIdea"`
	MarketAverage float64 `json:"marketAverage"`
}

// IdeaValidation is the scored validation report.
type IdeaValidation struct {
	OverallScore              float64               `json:"overallScore"`
	Verdict                   string                `json:"verdict"`
	Summary                   string                `json:"summary"`
	ValidationScores          []ValidationScore     `json:"validationScores"`
	Strengths                 []string              `json:"strengths"`
	Weaknesses                []string              `json:"weaknesses"`
	Risks                     []Risk                `json:"risks"`
	MarketData                []MarketDataPoint     `json:"marketData"`
	CompetitivePositioning    []CompetitivePosition `json:"competitivePositioning"`
	Recommendations           []string              `json:"recommendations"`
	GoToMarketScore           float64               `json:"goToMarketScore"`
	TechnicalFeasibilityScore float64               `json:"technicalFeasibilityScore"`
	MarketOpportunityScore    float64               `json:"marketOpportunityScore"`
}

// Phase is one roadmap phase.
type Phase struct {
	Number      int      `json:"number"`
	Name        string   `json:"name"`
	Goal        string   `json:"goal"`
	Features    []string `json:"features"`
	Deliverable string   `json:"deliverable"`
}

// FeatureDependency is a directed dependency between two features.
type FeatureDependency struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Roadmap is the phased implementation plan.
type Roadmap struct {
	Phases       []Phase             `json:"phases"`
	Dependencies []FeatureDependency `json:"dependencies"`
}

// Sprint is one delivery sprint.
type Sprint struct {
	Number       int      `json:"number"`
	Goal         string   `json:"goal"`
	Features     []string `json:"features"`
	Deliverables []string `json:"deliverables"`
}

// Milestone marks a notable sprint outcome.
type Milestone struct {
	Sprint    int    `json:"sprint"`
	Milestone string `json:"milestone"`
}

// Timeline is the sprint-based delivery plan.
type Timeline struct {
	TotalSprints int         `json:"totalSprints"`
	Sprints      []Sprint    `json:"sprints"`
	Milestones   []Milestone `json:"milestones"`
}

// ImplementationPrompts is the feature list with filled-in prompts.
type ImplementationPrompts []Feature
