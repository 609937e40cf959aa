package aws

import "fmt"

const awsAssumePolicy = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Principal": {
				"Service": ["lambda.amazonaws.com"]
			},
			"Action": ["sts:AssumeRole"]
		}
	]
}`

const awsAttachPolicyTemplate = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Action": ["s3:GetObject"],
			"Resource": "arn:aws:s3:::%s/%s"
		},
		{
			"Effect": "Allow",
			"Action": ["logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"],
			"Resource": "arn:aws:logs:*:*:*"
		}
	]
}`

// pagePolicy grants read access to the page object and log writes.
func pagePolicy(bucket, key string) string {
	return fmt.Sprintf(awsAttachPolicyTemplate, bucket, key)
}
