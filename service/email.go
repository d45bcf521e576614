package service

import (
	"fmt"
	"log"
	"time"

	"expensetracker/config"
	"expensetracker/models"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务（预算超支提醒）
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendBudgetAlert 发送预算超支提醒邮件
// 发送失败只记录日志，不向调用方传播
func (s *EmailService) SendBudgetAlert(user *models.User, monthTotal float64, date time.Time) {
	if !s.Enabled() || user.Email == "" || user.BudgetLimit == nil {
		return
	}

	subject := fmt.Sprintf("【记账本】%d年%d月消费已超出预算", date.Year(), int(date.Month()))
	body := s.generateBudgetAlertBody(user.Name, monthTotal, *user.BudgetLimit, date)

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		log.Printf("预算提醒邮件发送失败 (user=%d): %v", user.ID, err)
	}
}

// generateBudgetAlertBody 生成预算提醒邮件内容
func (s *EmailService) generateBudgetAlertBody(name string, monthTotal, budgetLimit float64, date time.Time) string {
	over := monthTotal - budgetLimit
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #ef4444, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .numbers { background: #fef2f2; border-left: 4px solid #ef4444; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .numbers p { margin: 4px 0; color: #7f1d1d; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💸 预算超支提醒</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您 %d 年 %d 月的消费已超出设定的预算上限：</p>
            <div class="numbers">
                <p>本月累计消费：<strong>%.2f</strong></p>
                <p>预算上限：<strong>%.2f</strong></p>
                <p>超出金额：<strong>%.2f</strong></p>
            </div>
            <p>建议检查近期支出，或在个人资料中调整预算上限。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账本 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, name, date.Year(), int(date.Month()), monthTotal, budgetLimit, over)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件，用于校验 SMTP 配置
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【记账本】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明邮件服务配置正确。</p>
    <p style="color: #666;">—— 记账本</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
