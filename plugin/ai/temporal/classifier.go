package temporal

// classify assigns the request type from the detected cues, falling back to
// the shape of the grammar span.
func classify(l *Locale, sig *Signals, gm GrammarMatch) RequestType {
	switch {
	case len(sig.NumericDates) > 0:
		return TypeSpecificDate
	case len(sig.Weekdays) > 0:
		// With or without relative weeks ("lundi dans 2 semaines").
		return TypeDayOfWeek
	case sig.WeekOfDay != nil:
		return TypePeriod
	case sig.Month != nil:
		return TypeMonth
	case sig.RelativeDays != nil || sig.RelativeWeeks != nil:
		return TypeRelative
	case gm.Found:
		switch {
		case l.HasWeekday(gm.Text):
			return TypeDayOfWeek
		case l.HasPeriodWord(gm.Text):
			return TypePeriod
		default:
			return TypeSpecificDate
		}
	}
	return TypeUnknown
}
