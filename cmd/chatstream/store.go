package main

import (
	"fmt"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/bolt"
	chatjson "github.com/fwojciec/chatstream/json"
)

// openStore opens the configured conversation store. The returned func
// releases it.
func openStore(cfg StoreConfig) (chatstream.Store, func() error, error) {
	switch cfg.Driver {
	case driverBolt:
		s, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case driverJSON:
		return chatjson.NewStore(cfg.Path), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
