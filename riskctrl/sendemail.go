package riskctrl

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/params"
)

var prevAlertTimestamp int64

// SendEmail send a plain text mail through the configured smtp relay
func SendEmail(subject, content string) error {
	emailCfg := params.GetConfig().Email
	if emailCfg == nil {
		return nil
	}
	mail := email.NewEmail()
	mail.From = emailCfg.From
	mail.To = emailCfg.To
	mail.Subject = subject
	mail.Text = []byte(content)
	addr := fmt.Sprintf("%v:%v", emailCfg.Server, emailCfg.Port)
	auth := smtp.PlainAuth("", emailCfg.From, emailCfg.FromPassword, emailCfg.Server)
	return mail.Send(addr, auth)
}

func sendAlertEmail(subject, content string) {
	riskCfg := params.GetConfig().Risk
	cooldown := riskCfg.AlertCooldownSeconds
	if cooldown <= 0 {
		cooldown = 1800
	}
	now := time.Now().Unix()
	if prevAlertTimestamp+cooldown > now {
		return // too frequently
	}
	prevAlertTimestamp = now
	err := SendEmail(subject, content)
	if err != nil {
		log.Error("[audit] send alert email failed", "subject", subject, "err", err)
	} else {
		log.Info("[audit] send alert email success", "subject", subject)
	}
}
