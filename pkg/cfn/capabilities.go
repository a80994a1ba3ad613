package cfn

import "strings"

// Capability flags CloudFormation may require on stack mutation.
const (
	CapabilityIAM      = "CAPABILITY_IAM"
	CapabilityNamedIAM = "CAPABILITY_NAMED_IAM"
)

// iamImplicatedTypes are resource type fragments whose stacks commonly
// create or attach IAM principals. The list is a heuristic with known
// false negatives: a type outside it that does need CAPABILITY_IAM
// fails the CreateStack call with InsufficientCapabilities and is
// surfaced as that error, not silently granted.
var iamImplicatedTypes = []string{
	"IAM::Role",
	"IAM::Policy",
	"IAM::User",
	"IAM::Group",
	"IAM::InstanceProfile",
	"IAM::ManagedPolicy",
	"Lambda::Function",
	"Events::Rule",
	"S3::Bucket",
}

// namedIAMProperties pin IAM resource names, which CloudFormation only
// allows with CAPABILITY_NAMED_IAM.
var namedIAMProperties = []string{"RoleName", "PolicyName", "UserName", "GroupName"}

// InferCapabilities returns the capability flags a CreateStack or
// UpdateStack call needs for one resource of resourceType with the
// given properties.
func InferCapabilities(resourceType string, properties map[string]interface{}) []string {
	var capabilities []string

	for _, fragment := range iamImplicatedTypes {
		if strings.Contains(resourceType, fragment) {
			capabilities = append(capabilities, CapabilityIAM)
			break
		}
	}

	for _, property := range namedIAMProperties {
		if _, ok := properties[property]; ok {
			capabilities = append(capabilities, CapabilityNamedIAM)
			break
		}
	}

	return capabilities
}
