package mail

type StageEmailData struct {
	LeadName   string
	StageLabel string
	Won        bool
	Value      string
	ChangedBy  string
	ChangedAt  string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
}
