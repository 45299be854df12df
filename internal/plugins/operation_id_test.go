// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/pkg/types"
)

func TestAssignOperationIDs(t *testing.T) {
	routes := []types.Route{
		{Method: "GET", Path: "/users", Class: "UserResource", Handler: "list", Package: "com.acme"},
		{Method: "POST", Path: "/users", Class: "UserResource", Handler: "create", Package: "com.acme"},
		{Method: "GET", Path: "/v2/users", Class: "UserResource", Handler: "list", Package: "com.acme"},
		{Method: "GET", Path: "/x", OperationID: "fixed"},
	}

	require.NoError(t, AssignOperationIDs(routes, "{{className}}.{{methodName}}"))
	assert.Equal(t, "UserResource.list", routes[0].OperationID)
	assert.Equal(t, "UserResource.create", routes[1].OperationID)
	assert.Equal(t, "UserResource.list_1", routes[2].OperationID)
	assert.Equal(t, "fixed", routes[3].OperationID)
}

func TestAssignOperationIDs_Placeholders(t *testing.T) {
	routes := []types.Route{{Method: "DELETE", Class: "OrderController", Handler: "remove", Package: "com.acme.orders"}}

	require.NoError(t, AssignOperationIDs(routes, "{{package}}:{{httpMethod}}_{{ methodName }}"))
	assert.Equal(t, "com.acme.orders:delete_remove", routes[0].OperationID)
}

func TestAssignOperationIDs_UnknownPlaceholder(t *testing.T) {
	routes := []types.Route{{Method: "GET", Path: "/a", Handler: "a"}}

	err := AssignOperationIDs(routes, "{{controller}}.{{methodName}}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation id placeholder {{controller}}")
	assert.Contains(t, err.Error(), "GET /a")
}
