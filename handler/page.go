package handler

import "fmt"

const errorPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Error</title>
</head>
<body>
    <h1>Error</h1>
    <p>%s</p>
</body>
</html>`

// ErrorPage wraps message in a minimal HTML document. The message is
// inserted as is, without escaping.
func ErrorPage(message string) string {
	return fmt.Sprintf(errorPageTemplate, message)
}
