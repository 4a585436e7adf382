// Package config: окружение процесса (Env) и YAML-файл со списком серверов
// (File). Файл перечитывается планировщиком на каждом тике, так что правки
// вступают в силу без перезапуска.
//
//	discord:
//	  serverStatusChannelId: "123456789012345678"
//	servers:
//	  - type: css
//	    address: 1.2.3.4:27015
package config
