package aws

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/awslabs/goformation/v7/cloudformation"
	"github.com/awslabs/goformation/v7/cloudformation/elasticloadbalancingv2"
	cfnIAM "github.com/awslabs/goformation/v7/cloudformation/iam"
	cfnLambda "github.com/awslabs/goformation/v7/cloudformation/lambda"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const maxTargetGroupName = 32

// Logical resource names in the rendered template.
const (
	RoleResource        = "PageFunctionRole"
	FunctionResource    = "PageFunction"
	PermissionResource  = "PageFunctionAlbPermission"
	TargetGroupResource = "PageTargetGroup"
)

// Template renders and validates the CloudFormation stack that puts the
// function behind an ALB target group.
type Template struct {
	config *config.Config
	client *cfn.Client
}

// NewTemplate creates a new CloudFormation template renderer
func NewTemplate(cfg *config.Config, awsConfig aws.Config) *Template {
	if cfg.Lambda == nil {
		cfg.Lambda = &config.Lambda{}
	}
	cfg.Lambda.Defaults()

	return &Template{
		config: cfg,
		client: cfn.NewFromConfig(awsConfig),
	}
}

// Build assembles the stack. codeKey is the key of the function zip in
// the page bucket.
func (t *Template) Build(codeKey string) *cloudformation.Template {
	template := cloudformation.NewTemplate()
	template.Description = "Serves s3://" + t.config.Bucket + "/" + t.config.Key + " through an ALB lambda target"

	template.Resources[RoleResource] = &cfnIAM.Role{
		AssumeRolePolicyDocument: map[string]any{
			"Version": "2012-10-17",
			"Statement": []map[string]any{{
				"Effect":    "Allow",
				"Principal": map[string]any{"Service": []string{"lambda.amazonaws.com"}},
				"Action":    []string{"sts:AssumeRole"},
			}},
		},
		Policies: []cfnIAM.Role_Policy{{
			PolicyName: policyName,
			PolicyDocument: map[string]any{
				"Version": "2012-10-17",
				"Statement": []map[string]any{
					{
						"Effect":   "Allow",
						"Action":   []string{"s3:GetObject"},
						"Resource": "arn:aws:s3:::" + t.config.Bucket + "/" + t.config.Key,
					},
					{
						"Effect":   "Allow",
						"Action":   []string{"logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"},
						"Resource": "arn:aws:logs:*:*:*",
					},
				},
			},
		}},
	}

	template.Resources[FunctionResource] = &cfnLambda.Function{
		FunctionName:  aws.String(t.config.Name),
		Role:          cloudformation.GetAtt(RoleResource, "Arn"),
		Runtime:       aws.String(t.config.Lambda.Runtime),
		Handler:       aws.String(t.config.Lambda.Handler),
		MemorySize:    aws.Int(t.config.Lambda.Memory),
		Timeout:       aws.Int(t.config.Lambda.Timeout),
		Architectures: []string{t.config.Lambda.Architecture},
		Code: &cfnLambda.Function_Code{
			S3Bucket: aws.String(t.config.Bucket),
			S3Key:    aws.String(codeKey),
		},
		Environment: &cfnLambda.Function_Environment{
			Variables: t.config.Env(),
		},
	}

	template.Resources[PermissionResource] = &cfnLambda.Permission{
		Action:       "lambda:InvokeFunction",
		FunctionName: cloudformation.GetAtt(FunctionResource, "Arn"),
		Principal:    "elasticloadbalancing.amazonaws.com",
	}

	template.Resources[TargetGroupResource] = &elasticloadbalancingv2.TargetGroup{
		Name:       aws.String(targetGroupName(t.config.Name)),
		TargetType: aws.String("lambda"),
		Targets: []elasticloadbalancingv2.TargetGroup_TargetDescription{
			{Id: cloudformation.GetAtt(FunctionResource, "Arn")},
		},
		AWSCloudFormationDependsOn: []string{PermissionResource},
	}

	return template
}

// targetGroupName fits name into the 32 characters ALB allows. Names may
// not end with a hyphen.
func targetGroupName(name string) string {
	if len(name) > maxTargetGroupName {
		name = name[:maxTargetGroupName]
	}
	return strings.TrimRight(name, "-")
}

// Render returns the stack as JSON
func (t *Template) Render(codeKey string) ([]byte, error) {
	log.Debug("rendering cloudformation template...")
	return t.Build(codeKey).JSON()
}

// Validate asks CloudFormation to validate a rendered template
func (t *Template) Validate(ctx context.Context, body []byte) error {
	log.Debug("validating cloudformation template...")
	_, err := t.client.ValidateTemplate(ctx, &cfn.ValidateTemplateInput{
		TemplateBody: aws.String(string(body)),
	})
	return err
}
