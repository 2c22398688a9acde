package core

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

var paymentMethods = []Option{
	{Value: string(PaymentCash), Label: "Cash", Icon: "💵"},
	{Value: string(PaymentDebit), Label: "Debit Card", Icon: "💳"},
	{Value: string(PaymentCredit), Label: "Credit Card", Icon: "💳"},
	{Value: string(PaymentCheck), Label: "Check", Icon: "📝"},
	{Value: string(PaymentTransfer), Label: "Bank Transfer", Icon: "🏦"},
	{Value: string(PaymentDigital), Label: "Digital Wallet", Icon: "📱"},
	{Value: string(PaymentOther), Label: "Other", Icon: "💰"},
}

var frequencies = []Option{
	{Value: string(Once), Label: "One-time"},
	{Value: string(Daily), Label: "Daily"},
	{Value: string(Weekly), Label: "Weekly"},
	{Value: string(Biweekly), Label: "Bi-weekly"},
	{Value: string(Monthly), Label: "Monthly"},
	{Value: string(Quarterly), Label: "Quarterly"},
	{Value: string(Yearly), Label: "Yearly"},
}

var statuses = []Option{
	{Value: string(StatusPending), Label: "Pending"},
	{Value: string(StatusCompleted), Label: "Completed"},
	{Value: string(StatusCancelled), Label: "Cancelled"},
}

func PaymentMethods() []Option { return append([]Option(nil), paymentMethods...) }
func Frequencies() []Option    { return append([]Option(nil), frequencies...) }
func Statuses() []Option       { return append([]Option(nil), statuses...) }

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func (p PaymentMethod) IsValid() bool { return hasOption(paymentMethods, string(p)) }
func (f Frequency) IsValid() bool     { return hasOption(frequencies, string(f)) }
func (s Status) IsValid() bool        { return hasOption(statuses, string(s)) }

// Label returns the display label, or the raw value when unknown.
func (p PaymentMethod) Label() string {
	for _, o := range paymentMethods {
		if o.Value == string(p) {
			return o.Label
		}
	}
	return string(p)
}
