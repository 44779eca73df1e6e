package medications

// LogStatus define el estado de una entrada del historial de tomas.
// @Enum taken, missed, skipped
type LogStatus string

const (
	StatusTaken   LogStatus = "taken"
	StatusMissed  LogStatus = "missed"
	StatusSkipped LogStatus = "skipped"
)

// ValidLogStatus acepta solo los estados del enum cerrado.
func ValidLogStatus(s LogStatus) bool {
	switch s {
	case StatusTaken, StatusMissed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Frequency define las etiquetas de frecuencia soportadas por la UI.
type Frequency string

const (
	FreqOnceDaily     Frequency = "once_daily"
	FreqTwiceDaily    Frequency = "twice_daily"
	FreqThreeDaily    Frequency = "three_times_daily"
	FreqEveryOtherDay Frequency = "every_other_day"
	FreqWeekly        Frequency = "weekly"
	FreqAsNeeded      Frequency = "as_needed"
)
