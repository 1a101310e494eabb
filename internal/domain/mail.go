package domain

const (
	MailTypeCreateUser      = "create_user"
	MailTypeResetPassword   = "reset_password"
	MailTypeChangeEmail     = "change_email"
	MailTypeReadingAssigned = "reading_assigned"
)

type MailMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ReadingAssignedMailData struct {
	FullName    string `json:"fullName"`
	ServiceDate string `json:"serviceDate"`
	StartTime   string `json:"startTime"`
	Role        string `json:"role"`
	Citation    string `json:"citation"`
	IsRepeat    bool   `json:"isRepeat"`
}
