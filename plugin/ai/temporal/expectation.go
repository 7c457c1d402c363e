package temporal

// estimate returns how many dates and time slots a generator should aim
// for.
func estimate(t RequestType, sig *Signals) (dates, slots Count) {
	slots = Range(2, 3)
	numeric := len(sig.NumericDates)
	weekdays := len(sig.Weekdays)

	switch {
	case sig.Meal && (t == TypeSpecificDate || t == TypeDayOfWeek):
		return Exact(1), slots
	case t == TypeSpecificDate && numeric > 1:
		return Exact(numeric), slots
	case (t == TypeSpecificDate || t == TypeDayOfWeek) && numeric == 0 && sig.Month != nil && weekdays > 0:
		return Range(2, 3), slots
	case t == TypeSpecificDate:
		return Exact(1), slots
	case t == TypeDayOfWeek && sig.RelativeWeeks != nil:
		return Range(1, 2), slots
	case t == TypeDayOfWeek && weekdays > 1:
		return Exact(weekdays), slots
	case t == TypeDayOfWeek:
		return Exact(1), slots
	case t == TypeRelative && sig.RelativeDays != nil && sig.RelativeWeeks == nil:
		if *sig.RelativeDays <= 7 {
			return Range(3, 5), slots
		}
		return Range(5, 7), slots
	case t == TypeRelative || t == TypePeriod || t == TypeMonth:
		return Range(5, 7), slots
	}
	return Range(3, 5), slots
}
