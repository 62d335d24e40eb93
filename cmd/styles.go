package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)
)

var badgeColors = map[string]string{
	"active": "10", "verified": "10", "hired": "10", "offer_accepted": "10", "confirmed": "10",
	"draft": "8", "submitted": "12", "viewed": "12", "open": "12",
	"paused": "11", "pending": "11", "shortlisted": "11", "interview_scheduled": "11",
	"interview_completed": "11", "assessment": "11", "offer_sent": "11", "in_progress": "11",
	"closed": "8", "withdrawn": "8",
	"rejected": "9", "suspended": "9",
}

var (
	titleCaser = cases.Title(language.English)
	idrPrinter = message.NewPrinter(language.Indonesian)
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

// humanize turns an API enum such as "interview_scheduled" into a label
func humanize(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// badge renders a status as a colored label
func badge(status string) string {
	color, ok := badgeColors[status]
	if !ok {
		color = "7"
	}
	return badgeStyle.Foreground(lipgloss.Color(color)).Render(humanize(status))
}

// rupiah formats an amount the way invoices print it, e.g. "Rp 30.000"
func rupiah(amount int64) string {
	return idrPrinter.Sprintf("Rp %d", amount)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: must be a positive number", what)
	}
	return id, nil
}

// validateInput checks struct tags before anything is sent to the server
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", app.ErrInvalidArgument, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "file":
		return field + " must be an existing file"
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func printPaymentRequired(w io.Writer, pr *models.PaymentRequired) {
	fmt.Fprintln(w, errorStyle.Render("Your free job posting quota is used up."))
	if pr.Price > 0 {
		fmt.Fprintf(w, "%s %s per job\n", labelStyle.Render("Price:"), rupiah(pr.Price))
	}
	if pr.BankName != "" {
		fmt.Fprintf(w, "%s %s %s a.n. %s\n", labelStyle.Render("Transfer to:"), pr.BankName, pr.AccountNo, pr.AccountName)
	}
	hint := "karir payment submit --amount AMOUNT --proof FILE"
	if pr.JobID != 0 {
		hint = fmt.Sprintf("karir payment submit --job %d --amount %d --proof FILE", pr.JobID, pr.Price)
	}
	fmt.Fprintf(w, "Then upload the receipt with '%s'.\n", hint)
}

// prompt reads one trimmed line after printing label
func prompt(reader *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, labelStyle.Render(label))
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// stringFlag returns a pointer to the flag value when the flag was given
func stringFlag(changed bool, value string) *string {
	if !changed {
		return nil
	}
	return &value
}
