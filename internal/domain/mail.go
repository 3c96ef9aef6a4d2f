package domain

type OnboardingMailData struct {
	FullName   string `json:"fullName"`
	EmployeeID string `json:"employeeId"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type EnrollmentMailData struct {
	FullName  string `json:"fullName"`
	Title     string `json:"title"`
	Mode      string `json:"mode"`
	Venue     string `json:"venue"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type PasswordResetMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
