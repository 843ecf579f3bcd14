package models

// Candidate is a single generated answer
type Candidate struct {
	Text         string
	FinishReason string
}

// Reply is the result of one generation request
type Reply struct {
	Model      string
	Candidates []Candidate
	Chosen     int // Index of selected candidate
}

// Text returns the chosen candidate's text
func (r *Reply) Text() string {
	if c := r.ChosenCandidate(); c != nil {
		return c.Text
	}
	return ""
}

// ChosenCandidate returns a pointer to the chosen candidate
func (r *Reply) ChosenCandidate() *Candidate {
	if r == nil || len(r.Candidates) == 0 {
		return nil
	}
	if r.Chosen < 0 || r.Chosen >= len(r.Candidates) {
		return &r.Candidates[0]
	}
	return &r.Candidates[r.Chosen]
}
