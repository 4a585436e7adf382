// Package bot - «склейка» вокруг discord, gamequery и scheduler: хост бота
// и его slash-команды.
//
// Бот:
//   - регистрирует команды гильдии целиком (PUT, без диффа);
//   - подключается к Gateway и раздаёт взаимодействия командам по имени;
//   - запускает планировщик статусов и останавливает его в Stop.
//
// Команды:
//   - /check type:<игра> address:<host[:port]> - разовый опрос сервера,
//     ответ эфемерный; для type работает autocomplete (до 25 вариантов);
//   - /ping - отвечает "Meow!".
//
// Ошибка любой команды превращается в общий эфемерный ответ
// "There was an error while executing this command!", детали - только в лог.
//
// Пример:
//
//	reg := bot.NewRegistry().MustRegister(
//		bot.NewCheckCommand(querier, catalog),
//		bot.PingCommand{},
//	)
//	b, _ := bot.New(bot.Options{AppID: appID, GuildID: guildID,
//		REST: rest, Gateway: gw, Registry: reg, Scheduler: sched})
//	if err := b.Start(ctx); err != nil { log.Fatal(err) }
//	defer b.Stop()
package bot
