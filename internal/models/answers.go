package models

// AnswerSet maps an answer key to the scalar the citizen gave (option code or number).
type AnswerSet map[string]interface{}

// Clone returns a shallow copy; values are scalars so this is a full copy in practice.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether key was answered.
func (a AnswerSet) Has(key string) bool {
	_, ok := a[key]
	return ok
}
