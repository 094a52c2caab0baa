package mail

import "html/template"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to FindeRent, {{.FirstName}}!</h2>
  <p>Your account is ready. Browse apartments, save your favourites and
  chat with landlords right from the app.</p>
  <p>The FindeRent Team</p>
</div>`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi {{.FirstName}},</h2>
  <p>Your password reset code is:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.OTP}}</p>
  <p>The code expires in 10 minutes. If you didn't request a reset, you
  can safely ignore this email.</p>
</div>`))

var contactTemplate = template.Must(template.New("contact").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Message from {{.FirstName}} {{.LastName}}</h2>
  <p>{{.Message}}</p>
</div>`))
