package aws

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamTypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const policyName = "s3html-permissions"

type IAM struct {
	client     *iam.Client
	config     *config.Config
	roleName   string
	policyName string
}

// NewIAM creates a new AWS IAM object
func NewIAM(cfg *config.Config, awsConfig aws.Config) *IAM {
	return &IAM{
		config:     cfg,
		client:     iam.NewFromConfig(awsConfig),
		roleName:   RoleName(cfg.Name),
		policyName: policyName,
	}
}

// RoleName is the execution role name of the named function
func RoleName(function string) string {
	return fmt.Sprintf("%s-PageLambdaExecutionRole", function)
}

// EnsureRole makes sure the execution role and its policy exist and
// records the role ARN in the lambda configuration.
func (i *IAM) EnsureRole(ctx context.Context) error {
	role, err := i.getIAMRole(ctx)
	if err != nil {
		return err
	}
	i.config.Lambda.Role = aws.ToString(role.Arn)

	return i.ensureIAMRolePolicy(ctx)
}

// ensureIAMRolePolicy puts the page policy on the role. IAM returns the
// stored document URL-encoded.
func (i *IAM) ensureIAMRolePolicy(ctx context.Context) error {
	log.Debug("fetching IAM role policy...")
	document := pagePolicy(i.config.Bucket, i.config.Key)
	out, err := i.client.GetRolePolicy(ctx, &iam.GetRolePolicyInput{
		RoleName:   &i.roleName,
		PolicyName: &i.policyName,
	})
	if err != nil {
		var nseErr *iamTypes.NoSuchEntityException
		if !errors.As(err, &nseErr) {
			return err
		}
		log.Debug("IAM role policy not found. creating new IAM role policy...")
	} else if current, _ := url.QueryUnescape(aws.ToString(out.PolicyDocument)); current == document {
		return nil
	}

	_, err = i.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       &i.roleName,
		PolicyName:     &i.policyName,
		PolicyDocument: aws.String(document),
	})
	return err
}

// getIAMRole gets the execution role, creating it when missing
func (i *IAM) getIAMRole(ctx context.Context) (*iamTypes.Role, error) {
	log.Debug("fetching IAM role...")
	resp, err := i.client.GetRole(ctx, &iam.GetRoleInput{
		RoleName: &i.roleName,
	})
	if err != nil {
		var nseErr *iamTypes.NoSuchEntityException
		if errors.As(err, &nseErr) {
			log.Debug("IAM role not found. creating new IAM role...")
			resp, err := i.createIAMRole(ctx)
			if err != nil {
				return nil, err
			}
			return resp.Role, nil
		}
		return nil, err
	}

	return resp.Role, nil
}

// createIAMRole creates the execution role
func (i *IAM) createIAMRole(ctx context.Context) (*iam.CreateRoleOutput, error) {
	resp, err := i.client.CreateRole(ctx, &iam.CreateRoleInput{
		AssumeRolePolicyDocument: aws.String(awsAssumePolicy),
		Path:                     aws.String("/"),
		RoleName:                 &i.roleName,
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// DeleteRole removes the policy and the execution role
func (i *IAM) DeleteRole(ctx context.Context) error {
	log.Debug("deleting IAM role...")
	_, err := i.client.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   &i.roleName,
		PolicyName: &i.policyName,
	})
	var nseErr *iamTypes.NoSuchEntityException
	if err != nil && !errors.As(err, &nseErr) {
		return err
	}

	_, err = i.client.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: &i.roleName,
	})
	if err != nil && !errors.As(err, &nseErr) {
		return err
	}
	return nil
}
