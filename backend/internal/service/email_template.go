package service

import (
	"bytes"
	"fmt"
	"html/template"
)

// 紧急广播邮件模板
// 邮件正文面向收件的紧急联系人，使用英文文案；
// AlertDetails 仅在定时触发（预约报警）时出现
var emergencyEmailTmpl = template.Must(template.New("emergency_alert").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;background:#f7f7f7;border-radius:10px;overflow:hidden">
  <div style="background:linear-gradient(135deg,#ff416c,#ff4b2b);color:#fff;padding:24px;text-align:center">
    <h1 style="margin:0;font-size:24px">EMERGENCY ALERT</h1>
    <p style="margin:10px 0 0;font-size:18px;opacity:.9">From {{.UserName}}</p>
  </div>
  <div style="padding:30px;background:#fff">
    <p style="font-weight:bold;color:#d32f2f;margin-top:0">This person has triggered an emergency alert and may need immediate assistance.</p>
    <table style="width:100%;border-collapse:collapse;background:#ffebee;border-radius:8px;padding:20px">
      <tbody>
        <tr><td style="padding:8px;font-weight:bold;width:30%">User:</td><td style="padding:8px">{{.UserName}}</td></tr>
        <tr><td style="padding:8px;font-weight:bold">Time:</td><td style="padding:8px">{{.Time}}</td></tr>
        <tr><td style="padding:8px;font-weight:bold">Date:</td><td style="padding:8px">{{.Date}}</td></tr>
      </tbody>
    </table>
    <div style="margin:24px 0">
      <a href="{{.MapsLink}}" style="display:block;background:#1976d2;color:#fff;text-decoration:none;padding:12px 20px;border-radius:6px;font-weight:600;text-align:center">VIEW LOCATION ON MAP</a>
    </div>
    {{if .AudioURL}}
    <div style="margin-bottom:24px;background:#e8f5e9;padding:15px;border-radius:6px">
      <p style="margin:0 0 12px;font-weight:600;color:#2e7d32">Emergency Audio Recording</p>
      <a href="{{.AudioURL}}" style="display:block;background:#43a047;color:#fff;text-decoration:none;padding:10px 16px;border-radius:6px;font-weight:600;text-align:center">LISTEN TO EMERGENCY RECORDING</a>
    </div>
    {{end}}
    {{if .AlertDetails}}
    <div style="margin-top:24px;background:#e3f2fd;padding:20px;border-radius:6px">
      <h2 style="margin:0 0 16px;color:#1565c0;font-size:18px">SCHEDULED ALERT DETAILS:</h2>
      <table style="width:100%;border-collapse:collapse">
        <tbody>
          <tr><td style="padding:8px 0;font-weight:bold;width:30%;color:#1565c0">Planned Location:</td><td style="padding:8px 0">{{.AlertDetails.Location}}</td></tr>
          <tr><td style="padding:8px 0;font-weight:bold;color:#1565c0">With:</td><td style="padding:8px 0">{{.AlertDetails.Companions}}</td></tr>
          {{if .AlertDetails.Notes}}
          <tr><td style="padding:8px 0;font-weight:bold;color:#1565c0">Notes:</td><td style="padding:8px 0">{{.AlertDetails.Notes}}</td></tr>
          {{end}}
        </tbody>
      </table>
    </div>
    {{end}}
    <div style="margin-top:30px;padding:15px;background:#fafafa;border:1px solid #eee;border-radius:6px;text-align:center">
      <p style="margin:0;color:#d32f2f;font-weight:bold">This is an emergency alert. Please check the location and contact emergency services if necessary.</p>
    </div>
    <div style="margin-top:20px;border-top:1px solid #eee;padding-top:20px;text-align:center;color:#757575;font-size:14px">
      <p style="margin:0">For emergency services: Call 911 (US) or your local emergency number</p>
      <p style="margin:10px 0 0">Sent via Raven E-Alert Band System</p>
    </div>
  </div>
</div>
`))

// renderEmergencyEmail 渲染广播邮件正文
func renderEmergencyEmail(bctx *BroadcastContext) (string, error) {
	var buf bytes.Buffer
	if err := emergencyEmailTmpl.Execute(&buf, bctx); err != nil {
		return "", fmt.Errorf("渲染邮件模板失败: %w", err)
	}
	return buf.String(), nil
}

// emergencySubject 广播邮件主题
func emergencySubject(userName string) string {
	return fmt.Sprintf("EMERGENCY ALERT FROM %s", userName)
}
