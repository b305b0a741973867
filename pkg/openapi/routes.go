package openapi

import (
	"strings"

	"github.com/savetree-1/docflow/pkg/routes"
)

// AddGroups adds an operation for every route in groups, with paths mounted
// under prefix. Path wildcards become string parameters and the first path
// segment becomes the operation tag.
func (s *Spec) AddGroups(prefix string, groups ...routes.Group) {
	for _, pattern := range routes.Patterns(groups...) {
		method, path, ok := strings.Cut(pattern, " ")
		if !ok {
			continue
		}

		path, params := pathParams(prefix + path)
		item := s.Paths[path]
		if item == nil {
			item = &PathItem{}
			s.Paths[path] = item
		}

		op := &Operation{
			Summary:    method + " " + path,
			Tags:       tags(path, prefix),
			Parameters: params,
			Responses: map[int]*Response{
				200: {Description: "Success"},
				400: ResponseRef("BadRequest"),
				401: ResponseRef("Unauthorized"),
				403: ResponseRef("Forbidden"),
				404: ResponseRef("NotFound"),
				409: ResponseRef("Conflict"),
			},
		}
		if method == "POST" || method == "PUT" {
			op.RequestBody = &RequestBody{
				Content: map[string]*MediaType{
					"application/json": {Schema: &Schema{Type: "object"}},
				},
			}
		}

		switch method {
		case "GET":
			item.Get = op
		case "POST":
			item.Post = op
		case "PUT":
			item.Put = op
		case "DELETE":
			item.Delete = op
		}
	}
}

// pathParams rewrites {name...} wildcards to {name} and returns a parameter
// for each wildcard.
func pathParams(path string) (string, []*Parameter) {
	var params []*Parameter
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := strings.TrimSuffix(strings.Trim(seg, "{}"), "...")
		segments[i] = "{" + name + "}"
		params = append(params, &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}
	return strings.Join(segments, "/"), params
}

func tags(path, prefix string) []string {
	rest := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
	tag, _, _ := strings.Cut(rest, "/")
	if tag == "" {
		return nil
	}
	return []string{tag}
}
