package domain

// Stage bands for card statistics. A stage-0 card is new; stages one
// through three are still being learned; anything above is mature.
const (
	LearningBandMax = 3
)

// CardStats groups a user's cards by learning maturity.
type CardStats struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mature   int `json:"mature"`
	Mastered int `json:"mastered"`
	Total    int `json:"total"`
}

// StageBand names the band a stage falls into.
func StageBand(stage int) string {
	switch {
	case stage == 0:
		return "new"
	case stage <= LearningBandMax:
		return "learning"
	default:
		return "mature"
	}
}
