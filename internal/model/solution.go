package model

// Solution is a persisted pointer to a contributor's accepted solution
// commit. Created exactly once per solution-labeled pull request.
type Solution struct {
	URL      string `json:"solution_url"`
	Username string `json:"username"`
}
