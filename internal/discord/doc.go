// Package discord - минимальный клиент Discord API v10: Gateway (websocket)
// для получения событий и REST для сообщений, slash-команд и ответов на
// взаимодействия.
//
// Gateway:
//   - Hello → Identify (или Resume, если сессия жива) → READY;
//   - heartbeat в отдельной горутине, без ACK соединение считается мёртвым;
//   - op 7 / op 9 и обрывы - экспоненциальный реконнект (1s → 30s);
//   - close-коды 4004, 4010–4014 фатальны, реконнекта не будет.
//
// События (колбэки поля структуры):
//   - OnConnecting, OnReady, OnInteraction, OnDisconnected, OnError.
//
// REST:
//   - каждый метод принимает context;
//   - 429 повторяется после retry_after (ограниченное число раз);
//   - ответы >= 400 возвращаются как *APIError (см. IsNotFound).
//
// Пример:
//
//	rest := discord.NewREST(token)
//	gw := discord.NewGateway(token, discord.IntentGuilds)
//	gw.OnInteraction = func(it *discord.Interaction) {
//		r := discord.NewResponder(rest, appID, it)
//		_ = r.Reply(ctx, &discord.MessageSend{Content: "pong"})
//	}
//	if err := gw.Connect(ctx); err != nil { log.Fatal(err) }
//	defer gw.Disconnect()
package discord
