package params

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// WatchAndReloadPairsConfig watch the config file and hot reload the
// token pair section (swap bounds, fee rates) on change. Everything
// else needs a restart.
func WatchAndReloadPairsConfig() {
	if configFilePath == "" {
		log.Warn("no config file path, skip config watching")
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("create config watcher failed", "err", err)
		return
	}
	// watch the directory, editors replace the file on save
	err = watcher.Add(filepath.Dir(configFilePath))
	if err != nil {
		log.Error("add config watch failed", "err", err, "configFile", configFilePath)
		_ = watcher.Close()
		return
	}
	log.Info("start watching config file", "configFile", configFilePath)
	go watchLoop(watcher)
}

func watchLoop(watcher *fsnotify.Watcher) {
	defer func() {
		_ = watcher.Close()
	}()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != configFilePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reloadPairsConfig()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("config watcher error", "err", err)
		}
	}
}

func reloadPairsConfig() {
	config, err := loadConfigFile(configFilePath)
	if err != nil {
		log.Error("reload config failed", "configFile", configFilePath, "err", err)
		return
	}
	err = tokens.SetTokenPairsConfig(config.Pairs)
	if err != nil {
		log.Error("reload token pairs failed", "configFile", configFilePath, "err", err)
		return
	}
	bridgeConfig.Pairs = config.Pairs
	log.Info("reload token pairs success", "configFile", configFilePath, "pairs", len(config.Pairs))
}
