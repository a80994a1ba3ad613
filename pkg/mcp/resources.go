package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/cloudformation-agent/pkg/types"
)

// Resource URIs. Resource type names keep their :: separators; they are
// valid inside a path segment and survive the template match.
const (
	managedStacksURI    = "cloudformation://stacks"
	stackDetailTemplate = "cloudformation://stacks/{stackName}"
	resourceDocsURI     = "cloudformation://docs"
	resourceDocTemplate = "cloudformation://docs/{resourceType}"
	schemaTemplate      = "cloudformation://schemas/{resourceType}"
)

// registerResources exposes the managed stacks, their details, the
// registry schemas, and the configured documentation hints as MCP
// resources.
func (s *Server) registerResources() {
	s.registerManagedStacksResource()
	s.registerStackDetailResource()
	s.registerSchemaResource()
	s.registerResourceDocs()

	s.Logger.Info("Registered MCP resources")
}

func (s *Server) registerManagedStacksResource() {
	resource := mcp.NewResource(
		managedStacksURI,
		"Managed Stacks",
		mcp.WithResourceDescription("CloudFormation stacks created and managed by this system"),
		mcp.WithMIMEType("application/json"),
	)

	handler := func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.Logger.WithField("uri", managedStacksURI).Info("Reading managed stacks resource")

		result := s.Orchestrator.Execute(ctx, types.OperationRequest{
			Operation: types.OperationListAndManageResources,
		})
		if result.Status == types.StatusFailed {
			return nil, fmt.Errorf("failed to list managed stacks: %s", strings.Join(result.Errors, "; "))
		}

		byType := make(map[string]int)
		for _, stack := range result.Resources {
			if stack.ResourceType != "" {
				byType[stack.ResourceType]++
			}
		}
		summary := map[string]interface{}{
			"totalStacks":   len(result.Resources),
			"stacks":        result.Resources,
			"summaryByType": byType,
		}

		return marshalResourceContents(summary, managedStacksURI)
	}

	s.mcpServer.AddResource(resource, handler)
}

func (s *Server) registerStackDetailResource() {
	template := mcp.NewResourceTemplate(
		stackDetailTemplate,
		"Managed Stack Details",
		mcp.WithTemplateDescription("Status, resources, and template of one managed stack"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	handler := func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stackName := lastURISegment(request.Params.URI)
		if stackName == "" {
			return nil, fmt.Errorf("failed to extract stack name from URI: %s", request.Params.URI)
		}

		s.Logger.WithField("stackName", stackName).Info("Reading stack detail resource")

		stack, err := s.CFNClient.DescribeStack(ctx, stackName)
		if err != nil {
			return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
		}

		// Resources and template are enrichment; the describe result
		// alone is still a useful answer.
		detail := map[string]interface{}{
			"stack": stack,
		}
		if resources, err := s.CFNClient.DescribeStackResources(ctx, stackName); err == nil {
			detail["resources"] = resources
		}
		if templateBody, err := s.CFNClient.GetTemplate(ctx, stackName); err == nil {
			detail["templateBody"] = templateBody
		}

		return marshalResourceContents(detail, request.Params.URI)
	}

	s.mcpServer.AddResourceTemplate(template, handler)
}

func (s *Server) registerSchemaResource() {
	template := mcp.NewResourceTemplate(
		schemaTemplate,
		"Resource Type Schema",
		mcp.WithTemplateDescription("CloudFormation registry schema for a resource type, e.g. AWS::S3::Bucket"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	handler := func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resourceType := lastURISegment(request.Params.URI)
		if resourceType == "" {
			return nil, fmt.Errorf("failed to extract resource type from URI: %s", request.Params.URI)
		}

		s.Logger.WithField("resourceType", resourceType).Info("Reading schema resource")

		schema, err := s.CFNClient.DescribeResourceType(ctx, resourceType)
		if err != nil {
			return nil, fmt.Errorf("failed to describe type %s: %w", resourceType, err)
		}

		return marshalResourceContents(schema, request.Params.URI)
	}

	s.mcpServer.AddResourceTemplate(template, handler)
}

func (s *Server) registerResourceDocs() {
	if s.ResourceDocs == nil {
		return
	}

	resource := mcp.NewResource(
		resourceDocsURI,
		"Resource Documentation Hints",
		mcp.WithResourceDescription("Curated documentation summaries for common CloudFormation resource types"),
		mcp.WithMIMEType("application/json"),
	)

	listHandler := func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return marshalResourceContents(s.ResourceDocs, resourceDocsURI)
	}
	s.mcpServer.AddResource(resource, listHandler)

	template := mcp.NewResourceTemplate(
		resourceDocTemplate,
		"Resource Documentation Entry",
		mcp.WithTemplateDescription("Documentation hint for one resource type"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	detailHandler := func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resourceType := lastURISegment(request.Params.URI)
		entry, found := s.ResourceDocs.LookupResourceDoc(resourceType)
		if !found {
			return nil, fmt.Errorf("no documentation entry for %s", resourceType)
		}
		return marshalResourceContents(entry, request.Params.URI)
	}
	s.mcpServer.AddResourceTemplate(template, detailHandler)
}

// lastURISegment returns the part of the URI after the final slash.
func lastURISegment(uri string) string {
	parts := strings.Split(uri, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func marshalResourceContents(data interface{}, uri string) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
