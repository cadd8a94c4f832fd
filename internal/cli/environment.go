package cli

import (
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/security"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/internal/utils"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// Environment はコマンドが共有する設定とストレージ
type Environment struct {
	Config     *utils.AppConfig
	Encryption *security.EncryptionManager
	Snapshots  *storage.SnapshotStore
	Archive    storage.HistoryArchive
}

// LoadConfig は設定ファイルと環境変数から設定を読み込み、表示言語を反映する
func LoadConfig() (*utils.AppConfig, error) {
	config, err := utils.LoadAppConfig("")
	if err != nil {
		return nil, err
	}
	if err := ApplyMessages(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyMessages は messages_dir の上書きメッセージを読み込み、表示言語を反映する
func ApplyMessages(config *utils.AppConfig) error {
	if config.MessagesDir != "" {
		if err := i18n.LoadMessagesFromDir(config.MessagesDir); err != nil {
			return errors.WrapError(err, errors.ErrorTypeConfig, "invalid_config", "messages_dir="+config.MessagesDir)
		}
	}
	if locale := i18n.Locale(config.Language); i18n.ValidateLocale(locale) {
		i18n.SetLocale(locale)
	}
	return nil
}

// OpenEnvironment は設定に従ってストレージを開く
func OpenEnvironment(config *utils.AppConfig) (*Environment, error) {
	storageType, err := storage.ParseStorageType(config.Storage)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDirectory(config.DataDir); err != nil {
		return nil, err
	}

	encryption := security.NewEncryptionManager(config.DataDir, config.Encrypt)
	if err := encryption.InitializeEncryption(); err != nil {
		return nil, err
	}

	archive, err := storage.NewArchiveByType(storage.StorageConfig{
		Type:    storageType,
		DataDir: config.DataDir,
		Debug:   config.Debug,
	})
	if err != nil {
		return nil, err
	}

	return &Environment{
		Config:     config,
		Encryption: encryption,
		Snapshots:  storage.NewSnapshotStore(config.DataDir, encryption),
		Archive:    archive,
	}, nil
}

// Defaults はスナップショットがないセッションの初期値を返す
func (e *Environment) Defaults() session.Defaults {
	angle, err := types.ParseAngleMode(e.Config.AngleMode)
	if err != nil {
		angle = types.AngleDegrees
	}
	return session.Defaults{
		Theme:      e.Config.Theme,
		Scientific: e.Config.Scientific,
		AngleMode:  angle,
	}
}

// OpenSession はセッションを開く。id が空なら既定のセッション
func (e *Environment) OpenSession(id string) (*session.Session, error) {
	return session.Open(session.Options{
		ID:        id,
		Snapshots: e.Snapshots,
		Archive:   e.Archive,
		Defaults:  e.Defaults(),
		Debug:     e.Config.Debug,
	})
}

// Close はアーカイブを閉じる
func (e *Environment) Close() error {
	if e.Archive == nil {
		return nil
	}
	return e.Archive.Close()
}

// envLoader はコマンド実行ごとに環境を開く
type envLoader struct {
	config *utils.AppConfig
}

// open は設定を読み込んでストレージを開く
func (l *envLoader) open() (*Environment, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	l.config = config
	return OpenEnvironment(config)
}

// loadConfig はストレージを開かずに設定だけを読み込む
func (l *envLoader) loadConfig() (*utils.AppConfig, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	l.config = config
	return config, nil
}

func (l *envLoader) dataDir() string {
	if l.config != nil {
		return l.config.DataDir
	}
	return dataDirFallback()
}
