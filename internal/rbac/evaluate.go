package rbac

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/prepwise-next/internal/constants"
)

// HasPermission 判断主体是否拥有资源动作权限，先查自身权限再查继承权限
func (t *Table) HasPermission(subject *Subject, resource, action string, ctx AccessContext) bool {
	if t == nil || subject == nil || !subject.IsActive {
		return false
	}
	resolved, ok := t.roles[subject.Role]
	if !ok {
		return false
	}
	for _, perm := range resolved.permissions {
		if !matches(perm, resource, action) {
			continue
		}
		if conditionsHold(perm.Conditions, subject, ctx) {
			return true
		}
	}
	return false
}

func matches(perm Permission, resource, action string) bool {
	if perm.Resource != Wildcard && perm.Resource != resource {
		return false
	}
	return perm.Action == Wildcard || perm.Action == action
}

func conditionsHold(conditions map[string]interface{}, subject *Subject, ctx AccessContext) bool {
	for key, expected := range conditions {
		if !conditionHolds(key, expected, subject, ctx) {
			return false
		}
	}
	return true
}

func conditionHolds(key string, expected interface{}, subject *Subject, ctx AccessContext) bool {
	switch strings.ToLower(key) {
	case constants.ConditionOwnTenant, constants.ConditionSameTenant, constants.ConditionTenantScoped:
		if !truthy(expected) {
			return true
		}
		tenantID, ok := stringValue(ctx[constants.AccessContextTenantID])
		return ok && tenantID != "" && tenantID == subject.TenantID
	case constants.ConditionLimited:
		if subject.Role != constants.RoleTrialUser || !truthy(expected) {
			return true
		}
		allow, ok := ctx[constants.AccessContextAllowTrial].(bool)
		return ok && allow
	default:
		actual, ok := lookupContext(ctx, key)
		if !ok {
			return false
		}
		return strictEqual(actual, expected)
	}
}

// lookupContext 配置加载会把条件键转为小写，精确匹配失败时忽略大小写再查
func lookupContext(ctx AccessContext, key string) (interface{}, bool) {
	if actual, ok := ctx[key]; ok {
		return actual, true
	}
	for k, v := range ctx {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}
	if f, ok := numberValue(v); ok {
		return f != 0
	}
	return true
}

// strictEqual 同类型比较，数字统一按 float64 比较
func strictEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := numberValue(a); ok {
		fb, ok := numberValue(b)
		return ok && fa == fb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// stringValue 租户 ID 可能以字符串或数字形式出现在上下文中
func stringValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(val), true
	case fmt.Stringer:
		return strings.TrimSpace(val.String()), true
	}
	if f, ok := numberValue(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}
