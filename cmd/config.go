package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"langtest.dev/pkg/langtest/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "langtest"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	reportDirFlagName   = "report-dir"
	logFileFlagName     = "log-file"
	verboseFlagName     = "verbose"
	ignoredFlagName     = "ignored"
	noCaptureFlagName   = "nocapture"
	testThreadsFlagName = "test-threads"
	rerunAtMostFlagName = "rerun-at-most"
	timeoutFlagName     = "timeout"
	tuiFlagName         = "tui"
	failedFlagName      = "failed"

	testDirKey       = "test_dir"
	extensionsKey    = "extensions"
	extractPrefixKey = "extract.prefix"
	commentPrefixKey = "spec.comment_prefix"
	commandsKey      = "commands"

	runParallelKey    = "run.parallel"
	runRerunAtMostKey = "run.rerun_at_most"
	runTimeoutKey     = "run.timeout"
	runWarnAfterKey   = "run.warn_after"
	runTUIKey         = "run.tui"

	matcherIgnoreLeadingWhitespaceKey = "matcher.ignore_leading_whitespace"
	matcherNameMatchersKey            = "matcher.name_matchers"

	reportDirKey = "report.dir"

	defaultTestDir       = "tests"
	defaultExtractPrefix = "// "
	defaultCommentPrefix = "#"
	defaultRunParallel   = 0
	defaultRerunAtMost   = 0
	defaultTimeout       = 0
	defaultTUI           = false
	defaultReportDir     = ".langtest-reports"

	envPrefix = "LANGTEST"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".langtest.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(testDirKey, defaultTestDir)
	viper.SetDefault(extensionsKey, []string{})
	viper.SetDefault(extractPrefixKey, defaultExtractPrefix)
	viper.SetDefault(commentPrefixKey, defaultCommentPrefix)
	viper.SetDefault(commandsKey, []map[string]any{})

	viper.SetDefault(runParallelKey, defaultRunParallel)
	viper.SetDefault(runRerunAtMostKey, defaultRerunAtMost)
	viper.SetDefault(runTimeoutKey, defaultTimeout)
	viper.SetDefault(runWarnAfterKey, int64(domain.DefaultWarnAfter.Seconds()))
	viper.SetDefault(runTUIKey, defaultTUI)

	viper.SetDefault(matcherIgnoreLeadingWhitespaceKey, true)
	viper.SetDefault(matcherNameMatchersKey, []map[string]any{})

	viper.SetDefault(reportDirKey, defaultReportDir)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at log.level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
