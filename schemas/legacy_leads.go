package schemas

type LegacyLead struct {
	ID      int64
	Name    string
	Company string
	Email   string
	Mobile  string
	Value   float64
}
