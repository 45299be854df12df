// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package jaxrs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngxspec/ngxspec/internal/plugins"
	"github.com/ngxspec/ngxspec/internal/scanner"
	"github.com/ngxspec/ngxspec/pkg/types"
)

const orderResource = `
package com.acme.orders;

import jakarta.ws.rs.*;
import jakarta.ws.rs.core.*;

@Path("/orders")
@Produces(MediaType.APPLICATION_JSON)
public class OrderResource {
    private static final String BY_ID = "/{id: [0-9]+}";

    @GET
    public List<Order> list(@QueryParam("status") String status,
                            @HeaderParam("X-Tenant") @NotNull String tenant,
                            @Context UriInfo uriInfo) {
        return null;
    }

    @GET
    @Path(BY_ID)
    public Order get(@PathParam("id") long id) {
        return null;
    }

    @POST
    @Consumes({"application/json", "application/xml"})
    public Response create(Order order) {
        return null;
    }

    @DELETE
    @Path(BY_ID)
    @Deprecated
    public void delete(@PathParam("id") long id) {
    }

    @Path("/{id}/items")
    public ItemResource items(@PathParam("id") long id) {
        return null;
    }
}

class Order {
    private long id;
    private List<Item> items;
    public String getCustomerName() { return null; }
}

class Item {
    private String sku;
    private int quantity;
}
`

const healthApi = `
package com.acme.health;

@Path("/health")
public interface HealthApi {
    @GET
    @Path("/live")
    String live();

    @HttpMethod("PURGE")
    @Path("/cache")
    void purge();
}

public class HealthResource implements HealthApi {
    @Override
    public String live() { return "ok"; }

    @Override
    public void purge() {}
}
`

func sources(files map[string]string) []scanner.SourceFile {
	var out []scanner.SourceFile
	for path, content := range files {
		out = append(out, scanner.SourceFile{Path: path, Language: "java", Content: []byte(content)})
	}
	return out
}

func findRoute(routes []types.Route, method, path string) *types.Route {
	for i := range routes {
		if routes[i].Method == method && routes[i].Path == path {
			return &routes[i]
		}
	}
	return nil
}

func TestPlugin_Registered(t *testing.T) {
	p := plugins.Get("jaxrs")
	require.NotNil(t, p)
	assert.Equal(t, []string{".java"}, p.Extensions())
}

func TestPlugin_Detect(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		found bool
	}{
		{"jersey", "<artifactId>jersey-container-servlet</artifactId>", true},
		{"jakarta api", "<groupId>jakarta.ws.rs</groupId>", true},
		{"resteasy", "implementation 'org.jboss.resteasy:resteasy-core'", true},
		{"spring only", "<artifactId>spring-boot-starter-web</artifactId>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(tt.body), 0o644))

			found, err := New().Detect(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestPlugin_ExtractRoutes(t *testing.T) {
	routes, err := New().ExtractRoutes(sources(map[string]string{
		"/src/OrderResource.java": orderResource,
	}))
	require.NoError(t, err)

	// the sub-resource locator is not an endpoint
	require.Len(t, routes, 4)

	list := findRoute(routes, "GET", "/orders")
	require.NotNil(t, list)
	assert.Equal(t, "OrderResource", list.Class)
	assert.Equal(t, "com.acme.orders", list.Package)
	assert.Equal(t, []string{"Order"}, list.Tags)
	require.Len(t, list.Parameters, 2)
	assert.Equal(t, "status", list.Parameters[0].Name)
	assert.Equal(t, "query", list.Parameters[0].In)
	assert.False(t, list.Parameters[0].Required)
	assert.Equal(t, "X-Tenant", list.Parameters[1].Name)
	assert.True(t, list.Parameters[1].Required)
	assert.Contains(t, list.Responses["200"].Content, "application/json")

	get := findRoute(routes, "GET", "/orders/{id}")
	require.NotNil(t, get)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, &types.Schema{Type: "integer", Format: "int64", Pattern: "[0-9]+"}, get.Parameters[0].Schema)
	assert.Equal(t, "#/components/schemas/Order", get.Responses["200"].Content["application/json"].Schema.Ref)

	create := findRoute(routes, "POST", "/orders")
	require.NotNil(t, create)
	require.NotNil(t, create.RequestBody)
	assert.Len(t, create.RequestBody.Content, 2)
	assert.Nil(t, create.Responses, "raw Response leaves responses to the defaults")

	del := findRoute(routes, "DELETE", "/orders/{id}")
	require.NotNil(t, del)
	assert.True(t, del.Deprecated)
	assert.Contains(t, del.Responses, "204")
}

func TestPlugin_ExtractRoutes_Interface(t *testing.T) {
	routes, err := New().ExtractRoutes(sources(map[string]string{
		"/src/HealthApi.java": healthApi,
	}))
	require.NoError(t, err)
	require.Len(t, routes, 2)

	live := findRoute(routes, "GET", "/health/live")
	require.NotNil(t, live)
	assert.Equal(t, "HealthApi", live.Class)
	assert.NotNil(t, findRoute(routes, "PURGE", "/health/cache"))
}

func TestPlugin_ExtractSchemas(t *testing.T) {
	schemas, err := New().ExtractSchemas(sources(map[string]string{
		"/src/OrderResource.java": orderResource,
	}))
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	item, order := schemas[0], schemas[1]
	assert.Equal(t, "Item", item.Title)
	assert.Equal(t, &types.Schema{Type: "integer", Format: "int32"}, item.Properties["quantity"])

	assert.Equal(t, "Order", order.Title)
	assert.Contains(t, order.Properties, "customerName")
	assert.Equal(t, "#/components/schemas/Item", order.Properties["items"].Items.Ref)
}
