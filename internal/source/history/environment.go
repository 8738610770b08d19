package history

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/AbsaOSS/spot/internal/domain"
)

var (
	executorDropKeys    = []string{"hostPort", "executorLogs"}
	environmentDropKeys = []string{"systemProperties", "classpathEntries"}
	runtimeDropKeys     = []string{"javaHome"}
	propertyDropKeys    = []string{
		"spark_driver_host",
		"spark_driver_port",
		"spark_jars",
		"spark_eventLog_dir",
		"spark_driver_appUIAddress",
		"spark_ui_filters",
		"spark_org_apache_hadoop_yarn_server_webproxy_amfilter_AmIpFilter_param_PROXY_HOSTS",
		"spark_org_apache_hadoop_yarn_server_webproxy_amfilter_AmIpFilter_param_PROXY_URI_BASES",
		"spark_yarn_app_container_log_dir",
	}
)

func removeKeys(m map[string]any, keys []string) {
	for _, k := range keys {
		delete(m, k)
	}
}

func convertEnvironment(raw map[string]json.RawMessage) (*domain.Environment, error) {
	env := &domain.Environment{Extra: map[string]any{}}

	for key, value := range raw {
		switch key {
		case "sparkProperties":
			var pairs [][]string
			if err := json.Unmarshal(value, &pairs); err != nil {
				return nil, fmt.Errorf("decode sparkProperties: %w", err)
			}
			env.SparkProperties = PropertiesMap(pairs)
			removeKeys(env.SparkProperties, propertyDropKeys)
		case "runtime":
			if err := json.Unmarshal(value, &env.Runtime); err != nil {
				return nil, fmt.Errorf("decode runtime: %w", err)
			}
			removeKeys(env.Runtime, runtimeDropKeys)
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			env.Extra[key] = v
		}
	}
	removeKeys(env.Extra, environmentDropKeys)
	if len(env.Extra) == 0 {
		env.Extra = nil
	}
	return env, nil
}

// PropertiesMap converts Spark's [key, value] pairs into a map whose keys
// use '_' instead of '.'. Values made only of digits become integers.
func PropertiesMap(pairs [][]string) map[string]any {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}
		key := strings.ReplaceAll(pair[0], ".", "_")
		out[key] = castDigits(pair[1])
	}
	return out
}

func castDigits(s string) any {
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
