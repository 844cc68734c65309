package domain

// RangeForm names the shape of a created_at range condition.
type RangeForm int

const (
	RangeNone RangeForm = iota
	RangeFrom
	RangeTo
	RangeBetween
)

func (f RangeForm) String() string {
	switch f {
	case RangeFrom:
		return "from"
	case RangeTo:
		return "to"
	case RangeBetween:
		return "between"
	}
	return "none"
}

// DateRange bounds created_at (inclusive). Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// Form classifies the range. A nil range has no condition.
func (r *DateRange) Form() RangeForm {
	if r == nil {
		return RangeNone
	}
	switch {
	case r.From != "" && r.To != "":
		return RangeBetween
	case r.From != "":
		return RangeFrom
	case r.To != "":
		return RangeTo
	}
	return RangeNone
}
