package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultLog4jProperties is the console logging configuration mounted next
// to flink-conf.yaml so container logs reach stdout.
const DefaultLog4jProperties = `rootLogger.level = INFO
rootLogger.appenderRef.console.ref = ConsoleAppender
appender.console.name = ConsoleAppender
appender.console.type = CONSOLE
appender.console.layout.type = PatternLayout
appender.console.layout.pattern = %d{yyyy-MM-dd HH:mm:ss,SSS} %-5p %-60c %x - %m%n
`

// DefaultLogbackXML mirrors the console configuration for images whose
// Flink distribution logs through logback instead of log4j.
const DefaultLogbackXML = `<configuration>
  <appender name="console" class="ch.qos.logback.core.ConsoleAppender">
    <encoder>
      <pattern>%d{yyyy-MM-dd HH:mm:ss,SSS} %-5level %-60logger{60} %X{sourceThread} - %msg%n</pattern>
    </encoder>
  </appender>
  <root level="INFO">
    <appender-ref ref="console"/>
  </root>
</configuration>
`

// RenderFlinkConf serializes the configuration as flink-conf.yaml content.
// yaml.v3 emits map keys in sorted order, so rendering is deterministic for
// identical inputs.
func RenderFlinkConf(cfg Configuration) (string, error) {
	if len(cfg) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(map[string]string(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to render flink-conf.yaml: %w", err)
	}
	return string(out), nil
}
