package preference

// Relaxation names the constraint dropped by Relax.
type Relaxation string

const (
	RelaxType  Relaxation = "type"
	RelaxLevel Relaxation = "level"
	RelaxTopic Relaxation = "topic"
)

// Relax drops the weakest active constraint: course type first, then level,
// then topic. ok is false when no constraint is left to drop.
func Relax(f Filter) (relaxed Filter, dropped Relaxation, ok bool) {
	switch {
	case f.HasType():
		f.CourseType = ""
		return f, RelaxType, true
	case f.HasLevel():
		f.Level = ""
		return f, RelaxLevel, true
	case f.HasTopic():
		f.Topics = nil
		return f, RelaxTopic, true
	}
	return f, "", false
}
