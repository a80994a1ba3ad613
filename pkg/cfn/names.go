package cfn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var stackNameSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// GenerateStackName derives a unique stack name from a resource type,
// for example "AWS::S3::Bucket" becomes "cfn-s3-bucket-1a2b3c4d". The
// result always satisfies CloudFormation's stack name rules.
func GenerateStackName(resourceType string) string {
	name := strings.TrimPrefix(resourceType, "AWS::")
	name = strings.ToLower(strings.ReplaceAll(name, "::", "-"))
	name = stackNameSanitizer.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "resource"
	}

	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	stackName := fmt.Sprintf("cfn-%s-%s", name, suffix)
	if len(stackName) > MaxStackNameLength {
		stackName = strings.TrimRight(stackName[:MaxStackNameLength], "-")
	}
	return stackName
}
