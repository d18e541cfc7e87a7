package workflow

import "fmt"

// Portal instructions. Written as natural-language directives for the
// page-automation capability; none may ever contain credential values.
const (
	instrOpenSignIn = "Navigate to the sign-in form. If a sign-in link or " +
		"button is visible on the page, click it."

	instrFocusUsername = "Click the username or email input field so it has " +
		"keyboard focus."

	instrFocusPassword = "Click the password input field so it has keyboard focus."

	instrSubmitSignIn = "Click the sign-in button to submit the credentials " +
		"form."

	instrVerifySignedIn = "Describe what the current page shows. Mention " +
		"whether the portal now shows a signed-in area, such as a welcome " +
		"message, account menu, or sign out control."

	instrOpenMailSection = "Navigate to the section that shows today's " +
		"incoming mail previews."

	instrVerifyMailSection = "Describe what the current page shows. Mention " +
		"whether a mail or delivery dashboard with mail preview images is visible."
)

// instrInspectImage builds the semantic check directive around the verdict
// tokens the judge matches on.
func instrInspectImage(positiveToken, negativeToken string) string {
	return fmt.Sprintf("Look at this image. If it is a scanned photograph of "+
		"a physical mail piece showing a delivery address, respond with %s "+
		"followed by one sentence naming what is visible (such as the "+
		"recipient line or street). If it is a website element such as a "+
		"logo, banner, icon, or navigation control, or shows no address, "+
		"respond with %s.", positiveToken, negativeToken)
}
