package smtp

import (
	"bytes"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var Instance Provider

type Provider interface {
	IsConfigured() bool
	From() string
	// Send отправляет письмо, собранное через gomail
	Send(to []string, msg *gomail.Message) error
}

func Connect(user, password, host, port, from string, tlsEnabled bool) error {
	if from == "" {
		from = user
	}
	Instance = &impl{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		from:       from,
		tlsEnabled: tlsEnabled,
	}
	return nil
}

type impl struct {
	user       string
	password   string
	host       string
	port       string
	from       string
	tlsEnabled bool
}

func (i impl) IsConfigured() bool {
	return i.host != "" && i.port != "" && i.from != ""
}

func (i impl) From() string {
	return i.from
}

func (i impl) Send(to []string, msg *gomail.Message) (err error) {
	logger := log.WithField("sender", i.from)
	if !i.IsConfigured() {
		return errors.New("smtp client is not configured")
	}
	if len(to) == 0 {
		return nil
	}
	body := bytes.Buffer{}
	_, err = msg.WriteTo(&body)
	if err != nil {
		return errors.Wrap(err, "ошибка формирования письма")
	}
	var auth sasl.Client
	if i.user != "" {
		auth = sasl.NewPlainClient("", i.user, i.password)
	}
	if i.tlsEnabled {
		err = smtp.SendMailTLS(i.host+":"+i.port, auth, i.from, to, &body)
	} else {
		err = smtp.SendMail(i.host+":"+i.port, auth, i.from, to, &body)
	}
	if err != nil {
		logger.WithError(err).Error("Ошибка отправки сообщения")
		return err
	}
	logger.WithField("recipients", len(to)).Info("письмо отправлено")
	return nil
}
