package templates

import (
	"fmt"
	"strings"
	"time"

	"walkintovoid/constants"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

type LayoutProps struct {
	Title string
}

func HeaderComponent() g.Node {
	return Div(Class("header"), Style("padding: 16px 0; border-bottom: 1px solid #eee;"),
		A(Href(constants.PUBLIC_URL), Style("color: #111; text-decoration: none; font-weight: bold;"),
			g.Text(constants.APP_NAME),
		),
	)
}

func FooterComponent() g.Node {
	return Div(Class("footer"), Style("margin-top: 32px; color: #888; font-size: 12px;"),
		P(g.Text("If you did not ask for this email you can safely ignore it.")),
		P(g.Textf("%s, %s", constants.APP_NAME, constants.PUBLIC_URL)),
	)
}

// EmailLayout wraps transactional mail bodies. Styles are inline since most
// mail clients drop <style> blocks.
func EmailLayout(props LayoutProps, children ...g.Node) g.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(g.Text(props.Title)),
			),
			Body(Style("font-family: Helvetica, Arial, sans-serif; background: #fafafa; margin: 0;"),
				Div(Class("container"), Style("max-width: 480px; margin: 0 auto; padding: 24px; background: #fff;"),
					HeaderComponent(),
					Main(
						g.Group(children),
					),
					FooterComponent(),
				),
			),
		),
	)
}

func OtpEmail(code string, ttl time.Duration) g.Node {
	return EmailLayout(LayoutProps{Title: constants.OTP_MAIL_TITLE},
		H1(Style("font-size: 20px;"), g.Text("Verify your email")),
		P(g.Text("Use the code below to finish creating your account.")),
		P(Style("font-size: 32px; letter-spacing: 8px; font-weight: bold;"), g.Text(code)),
		P(g.Textf("The code expires in %d minutes.", int(ttl.Minutes()))),
	)
}

// OtpEmailText is the plain-text alternative of OtpEmail.
func OtpEmailText(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.",
		constants.APP_NAME, code, int(ttl.Minutes()))
}

func Render(n g.Node) (string, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
