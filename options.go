package btccore

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/qinglongcn/btccore/chaincfg"
	"github.com/qinglongcn/btccore/txscript"
)

// Options 是用于创建校验器与设置日志的参数
type Options struct {
	IsOpened bool // 是否已经用于创建校验器，创建后不可再修改

	InstanceId string // 实例标识符，用于区分日志文件

	Params          *chaincfg.Params     // 网络参数
	ScriptFlags     txscript.ScriptFlags // 脚本校验标志
	SigCacheSize    uint                 // 签名缓存条目上限，0 表示不缓存
	RequireStandard bool                 // 是否要求交易满足标准策略

	LogLevel logrus.Level // 日志级别
	LogDir   string       // 日志目录，为空时不写日志文件
	Fs       afero.Fs     // 创建日志目录使用的文件系统
}

// DefaultOptions 设置一个推荐选项列表
func DefaultOptions() *Options {
	return &Options{
		Params:          &chaincfg.MainNetParams,
		ScriptFlags:     txscript.StandardVerifyFlags,
		SigCacheSize:    50000,
		RequireStandard: true,
		LogLevel:        logrus.InfoLevel,
		LogDir:          "logs",
		Fs:              afero.NewOsFs(),
	}
}

// BuildInstanceId 设置实例ID，未指定时使用主要网卡的 MAC 地址
func (opt *Options) BuildInstanceId(instanceId ...string) {
	if opt.IsOpened {
		return
	}

	var mac string
	var err error
	if len(instanceId) > 0 {
		mac = instanceId[0]
	} else {
		mac, err = GetPrimaryMACAddress()
		if err != nil {
			// 生成随机字符串作为替代值
			mac, _ = generateRandomString(12)
		}
	}
	opt.InstanceId = mac
}

// BuildNet 按名称设置网络参数
func (opt *Options) BuildNet(name string) error {
	if opt.IsOpened {
		return nil
	}

	params, err := chaincfg.ParamsForNet(name)
	if err != nil {
		return err
	}
	opt.Params = params
	return nil
}

// BuildScriptFlags 设置脚本校验标志
func (opt *Options) BuildScriptFlags(flags txscript.ScriptFlags) {
	if opt.IsOpened {
		return
	}

	opt.ScriptFlags = flags
}

// BuildSigCacheSize 设置签名缓存大小
func (opt *Options) BuildSigCacheSize(size uint) {
	if opt.IsOpened {
		return
	}

	opt.SigCacheSize = size
}

// BuildRequireStandard 设置是否执行标准策略检查
func (opt *Options) BuildRequireStandard(require bool) {
	if opt.IsOpened {
		return
	}

	opt.RequireStandard = require
}

// BuildLogLevel 按名称设置日志级别，如 "debug"、"info"
func (opt *Options) BuildLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	opt.LogLevel = lvl
	return nil
}

// BuildLogDir 设置日志目录
func (opt *Options) BuildLogDir(path string) {
	opt.LogDir = filepath.Clean(path)
}

// BuildFs 设置文件系统
func (opt *Options) BuildFs(fs afero.Fs) {
	if fs == nil {
		return
	}

	opt.Fs = fs
}

// CheckAndSetOptions 检查并设置选项
func (opt *Options) CheckAndSetOptions() error {
	if opt.IsOpened {
		return fmt.Errorf("'%s' 的选项已被使用", opt.InstanceId)
	}

	if opt.Params == nil {
		opt.Params = &chaincfg.MainNetParams
	}
	if opt.Fs == nil {
		opt.Fs = afero.NewOsFs()
	}

	// Witness verification is only defined on top of P2SH.
	if opt.ScriptFlags&txscript.ScriptVerifyWitness != 0 &&
		opt.ScriptFlags&txscript.ScriptBip16 == 0 {
		return fmt.Errorf("脚本标志 %#x 启用了见证校验但未启用 P2SH",
			uint32(opt.ScriptFlags))
	}
	if opt.ScriptFlags&txscript.ScriptVerifyCleanStack != 0 &&
		opt.ScriptFlags&(txscript.ScriptBip16|txscript.ScriptVerifyWitness) == 0 {
		return fmt.Errorf("脚本标志 %#x 启用了 CleanStack 但未启用 P2SH 或见证校验",
			uint32(opt.ScriptFlags))
	}

	return nil
}
