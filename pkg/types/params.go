package types

// CloudFormation Stack Parameters

type CreateStackParams struct {
	StackName        string
	TemplateBody     string
	TemplateURL      string
	Parameters       []Parameter
	Capabilities     []string
	Tags             map[string]string
	TimeoutInMinutes *int32
}

type UpdateStackParams struct {
	StackName    string
	TemplateBody string
	TemplateURL  string
	Parameters   []Parameter
	Capabilities []string
	Tags         map[string]string
}

type DeleteStackParams struct {
	StackName       string
	RetainResources []string
}

// Change Set Parameters

type CreateChangeSetParams struct {
	StackName     string
	ChangeSetName string
	ChangeSetType string // CREATE or UPDATE
	TemplateBody  string
	TemplateURL   string
	Parameters    []Parameter
	Capabilities  []string
	Tags          map[string]string
}

// Template Validation

type TemplateParameterInfo struct {
	Key          string `json:"parameterKey"`
	DefaultValue string `json:"defaultValue,omitempty"`
	NoEcho       bool   `json:"noEcho,omitempty"`
	Description  string `json:"description,omitempty"`
}

type ValidateTemplateResult struct {
	Description        string                  `json:"description,omitempty"`
	Parameters         []TemplateParameterInfo `json:"parameters,omitempty"`
	Capabilities       []string                `json:"capabilities,omitempty"`
	CapabilitiesReason string                  `json:"capabilitiesReason,omitempty"`
}
