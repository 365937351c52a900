package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jefersonOS/barber-pro/internal/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service delivers staff-facing email. The only automated mail in the
// booking flow is the reconciliation alert: a payment landed after its
// appointment had already expired or been canceled.
type Service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) *Service {
	return &Service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Service) SendReconciliationAlert(to string, apt *model.Appointment, evt *model.PaymentConfirmation) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Pagamento recebido para agendamento inativo")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Um pagamento de %d %s foi confirmado para o agendamento <b>%s</b>, `+
			`mas o agendamento está com status <b>%s</b>.</p>`+
			`<p>Cliente: %s<br>Horário: %s</p>`+
			`<p>O agendamento não foi reativado automaticamente. `+
			`Entre em contato com o cliente para reembolso ou reagendamento.</p>`,
		evt.AmountCents, evt.Currency, apt.ID, apt.Status,
		apt.CustomerPhone, apt.StartsAt.Format("02/01/2006 15:04"),
	))
	return s.dialer.DialAndSend(m)
}
