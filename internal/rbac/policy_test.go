package rbac

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	policy, err := NewPolicy(DefaultRules())
	require.NoError(t, err)

	cases := map[string]Requirement{
		"/api/v1/auth/register":             Public,
		"/api/v1/auth/authenticate":         Public,
		"/api/v1/auth/me":                   Authenticated,
		"/api/v1/auth/me/":                  Authenticated,
		"/api/v1/product":                   Public,
		"/api/v1/product/42":                Public,
		"/api/v1/category/7":                Public,
		"/api/v1/reviews/product/3":         Public,
		"/api/v1/reviews/product/3/rating":  Public,
		"/api/v1/reviews/9/helpful":         Authenticated,
		"/api/v1/wishlist":                  Authenticated,
		"/api/v1/wishlist/shared/abc":       Public,
		"/api/v1/wishlist/shared/abc/extra": Authenticated,
		"/api/v1/order":                     Authenticated,
		"/api/v1/user":                      Authenticated,
		"/api/v1/productx":                  Authenticated,
		"/api/v1/auth/../order":             Authenticated,
		"/api/v1/product/":                  Public,
		"/api/v1/product/./1":               Authenticated,
		"/api/v1/product//1":                Authenticated,
		"/api/v1/product/5%2F..%2Forder":    Authenticated,
		"/api/v1/product/%2e%2e":            Authenticated,
		"/api/v1/auth/me%2F":                Authenticated,
		"api/v1/product":                    Authenticated,
		"/healthz":                          Public,
		"/":                                 Authenticated,
		"":                                  Authenticated,
	}
	for path, want := range cases {
		assert.Equal(t, want, policy.RequirementFor(path), path)
		assert.Equal(t, want != Public, policy.RequiresIdentity(path), path)
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	policy, err := NewPolicy([]Rule{
		{Pattern: "/api/items/special", Requirement: Authenticated},
		{Pattern: "/api/items/*", Requirement: Public},
	})
	require.NoError(t, err)
	assert.Equal(t, Authenticated, policy.RequirementFor("/api/items/special"))
	assert.Equal(t, Public, policy.RequirementFor("/api/items/other"))

	reversed, err := NewPolicy([]Rule{
		{Pattern: "/api/items/*", Requirement: Public},
		{Pattern: "/api/items/special", Requirement: Authenticated},
	})
	require.NoError(t, err)
	assert.Equal(t, Public, reversed.RequirementFor("/api/items/special"))
}

func TestPolicySingleStarStaysInSegment(t *testing.T) {
	policy, err := NewPolicy([]Rule{{Pattern: "/files/*", Requirement: Public}})
	require.NoError(t, err)
	assert.Equal(t, Public, policy.RequirementFor("/files/a"))
	assert.Equal(t, Authenticated, policy.RequirementFor("/files/a/b"))
}

func TestPolicyCatchAllAppended(t *testing.T) {
	policy, err := NewPolicy(nil)
	require.NoError(t, err)
	rules := policy.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Pattern: "**", Requirement: Authenticated}, rules[0])
	assert.Equal(t, Authenticated, policy.RequirementFor("/anything"))
}

func TestPolicyRejectsInvalidPattern(t *testing.T) {
	_, err := NewPolicy([]Rule{{Pattern: "/api/[", Requirement: Public}})
	assert.Error(t, err)
}

func TestPolicyConcurrentReads(t *testing.T) {
	policy, err := NewPolicy(DefaultRules())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, policy.RequiresIdentity("/api/v1/order"))
				assert.False(t, policy.RequiresIdentity("/api/v1/product/1"))
			}
		}()
	}
	wg.Wait()
}

func TestRequirementString(t *testing.T) {
	assert.Equal(t, "PUBLIC", Public.String())
	assert.Equal(t, "AUTHENTICATED", Authenticated.String())
}
