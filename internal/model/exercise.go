package model

// Complexity grades a reading text. The zero value means the exercise
// has not been graded yet; ordering is easy < medium < hard.
type Complexity string

const (
	ComplexityEasy   Complexity = "easy"
	ComplexityMedium Complexity = "medium"
	ComplexityHard   Complexity = "hard"
)

// Valid reports whether c is one of the known grades.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityEasy, ComplexityMedium, ComplexityHard:
		return true
	}
	return false
}

// Exercise is a reading text with its metadata. Categories are attached
// through the exercise_category join table.
type Exercise struct {
	ID         uint64     // exercise.id
	Title      string     // exercise.title
	Text       string     // exercise.text
	Complexity Complexity // exercise.complexity, "" when ungraded
	Categories []string   // category names via exercise_category
}

// Completion records one profile's progress on one exercise. At most one
// row exists per (UserID, ExerciseID); re-tracking overwrites it.
type Completion struct {
	UserID     uint64 // completions.user_id
	ExerciseID uint64 // completions.exercise_id
	Completion int    // percent of the text completed
	TimeSpent  int    // seconds spent reading
	Position   int    // last reading position (character offset)
}
