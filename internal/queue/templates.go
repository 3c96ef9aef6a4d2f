package queue

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var mailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	SubjectOnboarding    = "培训管理系统 - 账户信息"
	SubjectEnrollment    = "培训管理系统 - 培训通知"
	SubjectPasswordReset = "培训管理系统 - 重置密码"
)

func renderTemplate(name string, data any) (string, error) {
	buf := bytes.Buffer{}
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderOnboardingBody(data domain.OnboardingMailData) (string, error) {
	return renderTemplate("onboarding_email.html", data)
}

func renderEnrollmentBody(data domain.EnrollmentMailData) (string, error) {
	return renderTemplate("enrollment_email.html", data)
}

func renderPasswordResetBody(data domain.PasswordResetMailData) (string, error) {
	return renderTemplate("password_reset_email.html", data)
}
