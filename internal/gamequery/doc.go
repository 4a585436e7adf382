// Package gamequery - тонкий адаптер над протоколами опроса игровых серверов.
// Адаптер разбирает адрес вида host[:port], находит игру в каталоге,
// делегирует сам опрос backend'у (Prober) и сводит любой исход к значению
// Result. Наружу не выходит ни ошибка, ни паника: вызывающий код работает
// с результатом как с обычным значением.
//
// Поддерживаемые игры описаны в Catalog (идентификаторы совпадают с gamedig:
// css, csgo, tf2, rust, ...). Сейчас реализован один протокол - Valve A2S
// (см. NewValveProber).
//
// Пример:
//
//	q := gamequery.New(gamequery.DefaultCatalog(), logger,
//		gamequery.WithProber(gamequery.ProtocolValve, gamequery.NewValveProber(5*time.Second, 3)))
//
//	res := q.Query(ctx, "css", "1.2.3.4:27015")
//	if !res.Success {
//		log.Println("query failed:", res.Error)
//	}
package gamequery
