package http

import (
	"fmt"
	"net/http"
	"reflect"
	"unicode"
)

// Controller 接口定义http处理器
type Controller interface {
	// GetName 控制器的名称
	GetName() string
	// GetPath 路径前缀,同一个控制器下的处理方法都以此为前缀
	GetPath() string
	// GetHandlers 返回controller的所有处理方法,key为pattern,value为对应的处理方法
	GetHandlers() (map[string]http.HandlerFunc, error)
}

// BaseController 表示一个控制器
type BaseController struct {
	Name string // Controller的名称
	Path string // Controller的路径
	// PatternMethods pattern -> 方法名,pattern可以带有http方法,例如"GET /views/{id}"
	// 为空时使用方法名的下划线形式作为pattern
	PatternMethods map[string]string
}

// GetName implements Controller
func (p *BaseController) GetName() string {
	return p.Name
}

// GetPath implements Controller
func (p *BaseController) GetPath() string {
	return p.Path
}

// GetPatternMethods returns PatternMethods
func (p *BaseController) GetPatternMethods() map[string]string {
	return p.PatternMethods
}

type patternMethods interface {
	GetPatternMethods() map[string]string
}

var (
	m http.HandlerFunc
	t = reflect.TypeOf(m)
)

// ReflectHandlers 查找controller中类型为http.HandlerFunc的可导出方法.
// 如果controller配置了PatternMethods,按其映射查找方法,否则将驼峰命名改为下划线分隔的路径,
// 例如Index -> index,GetUser -> get_user
func ReflectHandlers(controller Controller) (handlers map[string]http.HandlerFunc, err error) {
	val := reflect.ValueOf(controller)
	if !val.IsValid() || val.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("controller must be a valid pointer")
	}

	handlers = map[string]http.HandlerFunc{}
	if pm, ok := controller.(patternMethods); ok && len(pm.GetPatternMethods()) > 0 {
		for pattern, name := range pm.GetPatternMethods() {
			methodVal := val.MethodByName(name)
			if !methodVal.IsValid() || !methodVal.Type().AssignableTo(t) {
				return nil, fmt.Errorf("can't find handler %s of %T for %s", name, controller, pattern)
			}
			handlers[pattern] = methodVal.Interface().(func(http.ResponseWriter, *http.Request))
		}
		return handlers, nil
	}

	controllerType := val.Type()
	for i := 0; i < val.NumMethod(); i++ {
		methodVal := val.Method(i)
		if methodVal.Type().AssignableTo(t) {
			handlers[ToUnderlineName(controllerType.Method(i).Name)] = methodVal.Interface().(func(http.ResponseWriter, *http.Request))
		}
	}
	return handlers, nil
}

// ToUnderlineName 将驼峰命名改为小写的下划线命名
func ToUnderlineName(camelName string) string {
	nameRune := []rune(camelName)
	normalizeName := make([]rune, 0, len(nameRune))

	for ni := 0; ni < len(nameRune); ni++ {
		if ni != 0 && unicode.IsUpper(nameRune[ni]) && unicode.IsLower(nameRune[ni-1]) {
			normalizeName = append(normalizeName, '_')
		}

		r := nameRune[ni]
		if unicode.IsUpper(nameRune[ni]) {
			r = unicode.ToLower(r)
		}
		normalizeName = append(normalizeName, r)
	}
	return string(normalizeName)
}
