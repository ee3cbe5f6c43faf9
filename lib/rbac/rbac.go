package rbac

import (
	"bpm-backend/models"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

type Provider interface {
	GetRuleFunc(method, path string) (models.RbacFunc, bool)
	RegisterRule(permission models.Permission, swaggerPattern string, handler models.RbacFunc) error
	GetPermissions(role models.UserRole) []models.Permission
}

var Instance Provider

func NewHandler() {
	i := &impl{
		rules: map[HTTPMethod]*PathRule{},
	}
	Instance = i
	i.initRules()
}

type impl struct {
	rules map[HTTPMethod]*PathRule
}

func (i *impl) GetRuleFunc(method, path string) (models.RbacFunc, bool) {
	normalizedPath := normalizePath(path)
	httpMethod := HTTPMethod(strings.ToUpper(method))

	if pathRule, exists := i.rules[httpMethod]; exists {
		if handler, found := i.findInPathRule(pathRule, normalizedPath); found {
			return handler, true
		}
	}

	return nil, false
}

// RegisterRule без handler доступ определяется таблицей разрешений роли
func (i *impl) RegisterRule(permission models.Permission, swaggerPattern string, handler models.RbacFunc) error {
	path, method, err := parseSwaggerPattern(swaggerPattern)
	if err != nil {
		return err
	}

	if _, exists := i.rules[method]; !exists {
		i.rules[method] = &PathRule{
			Exact:    make(map[string]models.RbacFunc),
			Patterns: []PatternRule{},
		}
	}

	if handler == nil {
		handler = AllowByPermissionFunc(permission)
	}
	pathRule := i.rules[method]
	if isExactPath(path) {
		pathRule.Exact[path] = handler
	} else {
		pattern := pathToRegex(path)
		if pattern == nil {
			pathRule.Exact[path] = handler
		} else {
			pathRule.Patterns = append(pathRule.Patterns, PatternRule{
				Pattern: pattern,
				Handler: handler,
			})
		}
	}

	return nil
}

func (i *impl) GetPermissions(role models.UserRole) []models.Permission {
	return PermissionsOf(role)
}

func isExactPath(path string) bool {
	return !strings.Contains(path, "{")
}

func pathToRegex(path string) *regexp.Regexp {
	// Экранируем специальные символы
	pattern := regexp.QuoteMeta(path)

	// Заменяем экранированные { и } на оригинальные для обработки параметров
	pattern = strings.ReplaceAll(pattern, "\\{", "{")
	pattern = strings.ReplaceAll(pattern, "\\}", "}")

	// Заменяем {param}
	pattern = regexp.MustCompile(`\{[^}]+?\}`).ReplaceAllString(pattern, `([^/]+)`)

	pattern = strings.ReplaceAll(pattern, `\*`, `.*?`)
	pattern = "^" + pattern + "$"

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}

	return regex
}

func (i *impl) findInPathRule(pathRule *PathRule, path string) (models.RbacFunc, bool) {
	if pathRule == nil {
		return nil, false
	}

	// 1. Проверяем точные совпадения
	if handler, exists := pathRule.Exact[path]; exists {
		return handler, true
	}

	// 3. Проверяем regexp паттерны
	for _, patternRule := range pathRule.Patterns {
		if patternRule.Pattern.MatchString(path) {
			return patternRule.Handler, true
		}
	}

	return nil, false
}

func AllowFunc() models.RbacFunc {
	return func(userID string, role models.UserRole, uri string) bool {
		return true
	}
}

func AllowByRoleFunc(accessRoles []models.UserRole) models.RbacFunc {
	allowMap := map[models.UserRole]bool{}
	for _, role := range accessRoles {
		allowMap[role] = true
	}
	return func(userID string, role models.UserRole, uri string) bool {
		return allowMap[role]
	}
}

func AllowByPermissionFunc(permission models.Permission) models.RbacFunc {
	return AllowByRoleFunc(RolesWith(permission))
}

// парсит строку в формате "/api/v1/users [post]"
func parseSwaggerPattern(pattern string) (path string, method HTTPMethod, err error) {
	pattern = strings.TrimSpace(pattern)

	bracketStart := strings.LastIndex(pattern, "[")
	bracketEnd := strings.LastIndex(pattern, "]")

	if bracketStart != -1 && bracketEnd != -1 && bracketEnd > bracketStart {
		path = strings.TrimSpace(pattern[:bracketStart])

		methodsStr := pattern[bracketStart+1 : bracketEnd]
		method = HTTPMethod(strings.ToUpper(strings.TrimSpace(methodsStr)))
	} else {
		return "", "", errors.Errorf("Method not provided for pattern (%v)", pattern)
	}

	path = normalizePath(path)

	return path, method, nil
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	return path
}
