// Command bootstrap is the lambda entry point serving index.html from the
// bucket named by S3_BUCKET.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/handler"
)

func main() {
	h := handler.New(config.FromEnv())
	lambda.Start(h.Handle)
}
