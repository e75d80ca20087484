package btccore

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

const (
	logName = "btccore"
)

// logFilename 返回实例的日志文件路径
func logFilename(opt *Options) string {
	if opt.InstanceId == "" {
		return filepath.Join(opt.LogDir, fmt.Sprintf("%s.log", logName))
	}

	// MAC addresses contain ':' which is not valid in every file name.
	id := strings.ReplaceAll(opt.InstanceId, ":", "")
	return filepath.Join(opt.LogDir, fmt.Sprintf("%s_%s.log", logName, id))
}

// SetLog 设置全局日志：彩色终端输出，并在 LogDir 不为空时为每个实例写入按大小轮转的 JSON 日志文件
func SetLog(opt *Options) error {
	if opt.Fs == nil {
		return fmt.Errorf("未设置文件系统")
	}

	logrus.SetLevel(opt.LogLevel)
	logrus.SetOutput(colorable.NewColorableStdout())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})

	// Calling SetLog again replaces the previous file hook.
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	if opt.LogDir == "" {
		return nil
	}

	if err := opt.Fs.MkdirAll(opt.LogDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录 %s 失败: %w", opt.LogDir, err)
	}

	// logrus 的回调钩子
	rotateFileHook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logFilename(opt),
		MaxSize:    50, // 文件最大50M
		MaxBackups: 3,
		MaxAge:     28, // 存储28天
		Level:      opt.LogLevel,
		Formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05", // 时间戳字符串格式
		},
	})
	if err != nil {
		return fmt.Errorf("初始化文件回调钩子失败: %w", err)
	}
	logrus.AddHook(rotateFileHook)

	return nil
}

// generateRandomString 生成一个指定长度的随机字符串
func generateRandomString(length int) (string, error) {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var result strings.Builder
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		result.WriteByte(letters[num.Int64()])
	}
	return result.String(), nil
}
